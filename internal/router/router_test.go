package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/controller/admin"
	"github.com/lshigami/vaikuntha/internal/controller/user"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/middleware"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/platform/bunny"
	"github.com/lshigami/vaikuntha/internal/platform/cache"
	"github.com/lshigami/vaikuntha/internal/platform/certificate"
	"github.com/lshigami/vaikuntha/internal/platform/payment"
	"github.com/lshigami/vaikuntha/internal/platform/storage"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

// newTestServer wires the real services against sqlite. External providers
// are left unconfigured.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	cfg := &config.Config{
		App:   config.App{Env: "test", Version: "1.0.0"},
		Auth:  config.Auth{JWTSecret: "router-secret", TokenTTL: time.Hour},
		Cors:  config.Cors{AllowedOrigins: []string{"*"}},
		Redis: config.Redis{TTL: time.Minute},
		Media: config.Media{
			Driver:            "local",
			LocalDir:          t.TempDir(),
			PublicBaseURL:     "/uploads",
			MaxUploadBytes:    1 << 20,
			ImageMaxDimension: 64,
		},
	}

	store, err := storage.NewLocalStore(cfg.Media.LocalDir, cfg.Media.PublicBaseURL)
	require.NoError(t, err)
	renderer, err := certificate.NewRenderer()
	require.NoError(t, err)
	reviewer, err := service.NewGeminiReviewer(cfg)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	sections := repository.NewSectionRepository(db)
	lectures := repository.NewLectureRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	progress := repository.NewProgressRepository(db)
	payments := repository.NewPaymentRepository(db)
	courseCache := service.NewCourseCache(cache.Noop{}, cfg)

	notifier := service.NewNotificationService(repository.NewNotificationRepository(db))
	authSvc := service.NewAuthService(users, cfg)
	userSvc := service.NewUserService(users, enrollments)
	courseSvc := service.NewCourseService(courses, courseCache)
	curriculumSvc := service.NewCurriculumService(courses, sections, lectures, enrollments, progress, notifier, courseCache, db)
	enrollmentSvc := service.NewEnrollmentService(enrollments, progress, courses, lectures, payments, notifier, courseCache, db)
	quizSvc := service.NewQuizService(courses, enrollments, repository.NewQuizRepository(db), repository.NewQuizSubmissionRepository(db), lectures, notifier, db)
	assignmentSvc := service.NewAssignmentService(courses, enrollments, repository.NewAssignmentRepository(db), lectures, store, reviewer, notifier, cfg)
	reviewSvc := service.NewReviewService(courses, enrollments, repository.NewReviewRepository(db), courseCache, db)
	paymentSvc := service.NewPaymentService(payments, courses, enrollments, users, payment.New(cfg), notifier, courseCache, db)
	liveSvc := service.NewLiveSessionService(courses, enrollments, repository.NewLiveSessionRepository(db), notifier, db)
	supportSvc := service.NewSupportService(repository.NewSupportRepository(db), users, notifier, db)
	certSvc := service.NewCertificateService(repository.NewCertificateRepository(db), enrollments, courses, users, store, renderer)
	mediaSvc := service.NewMediaService(store, cfg)
	videoSvc := service.NewVideoService(bunny.New(cfg))

	engine := NewEngine(cfg)
	engine.GET("/boom", func(*gin.Context) { panic("kaboom") })
	Register(engine, Controllers{
		Middleware: middleware.NewAuthMiddleware(authSvc),
		Auth:       user.NewAuthController(authSvc, userSvc),
		Catalog:    user.NewCatalogController(courseSvc, curriculumSvc, reviewSvc, liveSvc),
		Learning:   user.NewLearningController(enrollmentSvc, quizSvc, assignmentSvc, liveSvc, certSvc),
		Account:    user.NewAccountController(paymentSvc, supportSvc, notifier, mediaSvc),
		Courses:    admin.NewCourseController(courseSvc, curriculumSvc),
		Assessment: admin.NewAssessmentController(quizSvc, assignmentSvc),
		Operations: admin.NewOperationsController(liveSvc, supportSvc, videoSvc),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(role string) dto.AuthResponseDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterDTO{
		Name:     "Test " + role,
		Email:    uuid.NewString()[:8] + "@example.com",
		Password: "correct-horse",
		Role:     role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp dto.AuthResponseDTO
	decode(s.t, rec, &resp)
	return resp
}

func (s *testServer) createCourse(token string, req dto.CourseCreateDTO) dto.CourseResponseDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/courses", token, req)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var course dto.CourseResponseDTO
	decode(s.t, rec, &course)
	return course
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) dto.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var body dto.ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, code, body.Code)
	return body
}

func publishedCourse(title string) dto.CourseCreateDTO {
	return dto.CourseCreateDTO{
		Title:       title,
		Description: "Learn things",
		Category:    "Programming",
		Level:       "Beginner",
		Status:      model.CourseStatusPublished,
	}
}

func TestHealthAndRequestHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health dto.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, dto.HealthResponse{Status: "healthy", Version: "1.0.0"}, health)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderProcessTime))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.HeaderRequestID))
}

func TestUnknownRouteAndPanicFallback(t *testing.T) {
	s := newTestServer(t)

	requireError(t, s.do(http.MethodGet, "/api/v1/nope", "", nil), http.StatusNotFound, "not_found")

	rec := s.do(http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body dto.ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.Equal(t, "kaboom", body.Detail)
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	registered := s.register(model.RoleStudent)

	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginDTO{Email: registered.User.Email, Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login dto.AuthResponseDTO
	decode(t, rec, &login)
	assert.Equal(t, "Bearer", login.TokenType)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.UserResponseDTO
	decode(t, rec, &me)
	assert.Equal(t, registered.User.ID, me.ID)

	requireError(t, s.do(http.MethodGet, "/api/v1/auth/me", "", nil), http.StatusUnauthorized, "unauthorized")
	requireError(t, s.do(http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil), http.StatusUnauthorized, "invalid_token")
	requireError(t, s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginDTO{Email: registered.User.Email, Password: "wrong-password"}),
		http.StatusUnauthorized, "invalid_credentials")
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	s := newTestServer(t)

	body := requireError(t, s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Al", "email": "not-an-email", "password": "short",
	}), http.StatusBadRequest, "validation_failed")
	assert.Contains(t, body.Details, "email must be a valid email address")
	assert.Contains(t, body.Details, "password must be at least 8")

	instructor := s.register(model.RoleInstructor)
	req := publishedCourse("Slug Check")
	req.Slug = "Not A Slug"
	body = requireError(t, s.do(http.MethodPost, "/api/v1/courses", instructor.Token, req), http.StatusBadRequest, "validation_failed")
	assert.Contains(t, body.Details, "slug must contain only lowercase letters, digits and single hyphens")

	requireError(t, s.do(http.MethodGet, "/api/v1/courses/not-a-uuid", "", nil), http.StatusBadRequest, "invalid_id")
}

func TestCourseCreationIsStaffOnly(t *testing.T) {
	s := newTestServer(t)
	student := s.register(model.RoleStudent)

	requireError(t, s.do(http.MethodPost, "/api/v1/courses", student.Token, publishedCourse("Nope")), http.StatusForbidden, "forbidden")
	requireError(t, s.do(http.MethodPost, "/api/v1/courses", "", publishedCourse("Nope")), http.StatusUnauthorized, "unauthorized")
}

func TestCourseByIDAndSlugMatch(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register(model.RoleInstructor)
	course := s.createCourse(instructor.Token, publishedCourse("Go for Beginners"))
	assert.Equal(t, "go-for-beginners", course.Slug)

	byID := s.do(http.MethodGet, "/api/v1/courses/"+course.ID.String(), "", nil)
	bySlug := s.do(http.MethodGet, "/api/v1/courses/slug/"+course.Slug, "", nil)
	require.Equal(t, http.StatusOK, byID.Code)
	require.Equal(t, http.StatusOK, bySlug.Code)
	assert.JSONEq(t, byID.Body.String(), bySlug.Body.String())

	rec := s.do(http.MethodGet, "/api/v1/courses?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data  []dto.CourseSummaryDTO `json:"data"`
		Total int64                  `json:"total"`
		Limit int                    `json:"limit"`
	}
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, course.ID, page.Data[0].ID)
}

func TestDraftCourseHiddenFromVisitors(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register(model.RoleInstructor)
	req := publishedCourse("Draft Course")
	req.Status = model.CourseStatusDraft
	course := s.createCourse(instructor.Token, req)

	requireError(t, s.do(http.MethodGet, "/api/v1/courses/"+course.ID.String(), "", nil), http.StatusNotFound, "course_not_found")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/courses/"+course.ID.String(), instructor.Token, nil).Code)
}

func TestSectionsListInOrder(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register(model.RoleInstructor)
	course := s.createCourse(instructor.Token, publishedCourse("Ordered Course"))

	for _, order := range []int{2, 1} {
		o := order
		rec := s.do(http.MethodPost, "/api/v1/sections", instructor.Token, dto.SectionCreateDTO{
			CourseID: course.ID, Title: "Section", Order: &o,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/api/v1/courses/"+course.ID.String()+"/sections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.SectionResponseDTO
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Order)
	assert.Equal(t, 2, list[1].Order)
}

func TestPaymentIntentWithoutGateway(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register(model.RoleInstructor)
	student := s.register(model.RoleStudent)
	req := publishedCourse("Paid Course")
	req.Price = 49
	course := s.createCourse(instructor.Token, req)

	rec := s.do(http.MethodPost, "/api/v1/payments/create-intent", student.Token, dto.PaymentIntentCreateDTO{
		CourseID: course.ID, PaymentMethod: "card",
	})
	requireError(t, rec, http.StatusServiceUnavailable, "payments_unavailable")

	rec = s.do(http.MethodGet, "/api/v1/payments/history", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []dto.PaymentResponseDTO
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, model.PaymentFailed, history[0].Status)

	requireError(t, s.do(http.MethodPost, "/api/v1/enrollments", student.Token, dto.EnrollDTO{CourseID: course.ID}),
		http.StatusPaymentRequired, "payment_required")
}

func TestSupportTicketUpdateIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	student := s.register(model.RoleStudent)

	rec := s.do(http.MethodPost, "/api/v1/support/tickets", student.Token, map[string]string{
		"subject": "Cannot play video", "message": "The lecture video never loads.", "category": "technical",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket dto.SupportTicketResponseDTO
	decode(t, rec, &ticket)

	rec = s.do(http.MethodGet, "/api/v1/support/tickets/"+ticket.ID.String(), student.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	requireError(t, s.do(http.MethodPatch, "/api/v1/support/tickets/"+ticket.ID.String(), student.Token, map[string]string{"status": "closed"}),
		http.StatusForbidden, "forbidden")
}

func TestMediaUploadServesStoredFile(t *testing.T) {
	s := newTestServer(t)
	student := s.register(model.RoleStudent)

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("type", "image"))
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+student.Token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var uploaded dto.MediaUploadResponseDTO
	decode(t, rec, &uploaded)
	assert.Equal(t, 10, uploaded.Width)
	assert.Contains(t, uploaded.Key, "media/image/"+student.User.ID.String()+"/")

	get := s.do(http.MethodGet, uploaded.URL, "", nil)
	assert.Equal(t, http.StatusOK, get.Code)
}

func TestPublicCertificateVerification(t *testing.T) {
	s := newTestServer(t)
	requireError(t, s.do(http.MethodGet, "/api/v1/certificates/verify/VK-AAAA-BBBB-CCCC", "", nil), http.StatusNotFound, "certificate_not_found")
}

func TestVideoRoutesRequireStaff(t *testing.T) {
	s := newTestServer(t)
	student := s.register(model.RoleStudent)
	instructor := s.register(model.RoleInstructor)

	requireError(t, s.do(http.MethodPost, "/api/v1/bunny/create-video", student.Token, dto.VideoCreateDTO{Title: "Intro"}),
		http.StatusForbidden, "forbidden")
	requireError(t, s.do(http.MethodPost, "/api/v1/bunny/create-video", instructor.Token, dto.VideoCreateDTO{Title: "Intro"}),
		http.StatusServiceUnavailable, "video_unavailable")
}
