package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/platform/bunny"
	"github.com/lshigami/vaikuntha/internal/platform/cache"
	"github.com/lshigami/vaikuntha/internal/platform/certificate"
	"github.com/lshigami/vaikuntha/internal/platform/payment"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = raw
	m.types[key] = contentType
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) PublicURL(key string) string { return "/uploads/" + key }
func (m *memStore) Close() error                { return nil }

type fakeGateway struct {
	status    string
	statusErr error
	err       error
	charges   []payment.Charge
}

func (g *fakeGateway) CreateCheckout(_ context.Context, c payment.Charge) (*payment.Checkout, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.charges = append(g.charges, c)
	return &payment.Checkout{Token: "snap-" + c.OrderID, RedirectURL: "https://pay.example.com/" + c.OrderID}, nil
}

func (g *fakeGateway) TransactionStatus(_ context.Context, _ string) (string, error) {
	return g.status, g.statusErr
}

type fakeReviewer struct {
	feedback string
	score    float64
	err      error
	calls    int
}

func (r *fakeReviewer) Review(_ context.Context, _ ReviewRequest) (string, float64, error) {
	r.calls++
	return r.feedback, r.score, r.err
}

type fakeRenderer struct{ rendered []certificate.Details }

func (r *fakeRenderer) Render(d certificate.Details) ([]byte, error) {
	r.rendered = append(r.rendered, d)
	return []byte("png"), nil
}

type fakeVideos struct {
	configured bool
	videos     map[string]*bunny.Video
}

func (f *fakeVideos) Configured() bool { return f.configured }

func (f *fakeVideos) CreateVideo(_ context.Context, title, collectionID string) (*bunny.Video, error) {
	v := &bunny.Video{GUID: uuid.NewString(), Title: title, LibraryID: 42, CollectionID: collectionID}
	v.EmbedURL = "https://iframe.mediadelivery.net/embed/42/" + v.GUID
	if f.videos == nil {
		f.videos = map[string]*bunny.Video{}
	}
	f.videos[v.GUID] = v
	return v, nil
}

func (f *fakeVideos) GetVideo(_ context.Context, guid string) (*bunny.Video, error) {
	v, ok := f.videos[guid]
	if !ok {
		return nil, bunny.ErrNotFound
	}
	return v, nil
}

// harness wires every service against one sqlite database.
type harness struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	cfg *config.Config

	users         repository.UserRepository
	courses       repository.CourseRepository
	enrollments   repository.EnrollmentRepository
	notifications repository.NotificationRepository

	store    *memStore
	gateway  *fakeGateway
	reviewer *fakeReviewer
	renderer *fakeRenderer
	videos   *fakeVideos

	auth         AuthService
	user         UserService
	course       CourseService
	curriculum   CurriculumService
	enrollment   EnrollmentService
	quiz         QuizService
	assignment   AssignmentService
	review       ReviewService
	payment      PaymentService
	liveSession  LiveSessionService
	support      SupportService
	certificates CertificateService
	notifier     NotificationService
	media        MediaService
	video        VideoService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	cfg := &config.Config{
		Auth:  config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Redis: config.Redis{TTL: time.Minute},
		Media: config.Media{Driver: "local", MaxUploadBytes: 1 << 20, ImageMaxDimension: 64},
	}

	h := &harness{
		t:             t,
		ctx:           context.Background(),
		db:            db,
		cfg:           cfg,
		users:         repository.NewUserRepository(db),
		courses:       repository.NewCourseRepository(db),
		enrollments:   repository.NewEnrollmentRepository(db),
		notifications: repository.NewNotificationRepository(db),
		store:         newMemStore(),
		gateway:       &fakeGateway{status: "pending"},
		reviewer:      &fakeReviewer{},
		renderer:      &fakeRenderer{},
		videos:        &fakeVideos{configured: true},
	}

	sections := repository.NewSectionRepository(db)
	lectures := repository.NewLectureRepository(db)
	progress := repository.NewProgressRepository(db)
	payments := repository.NewPaymentRepository(db)
	courseCache := NewCourseCache(cache.Noop{}, cfg)

	h.notifier = NewNotificationService(h.notifications)
	h.auth = NewAuthService(h.users, cfg)
	h.user = NewUserService(h.users, h.enrollments)
	h.course = NewCourseService(h.courses, courseCache)
	h.curriculum = NewCurriculumService(h.courses, sections, lectures, h.enrollments, progress, h.notifier, courseCache, db)
	h.enrollment = NewEnrollmentService(h.enrollments, progress, h.courses, lectures, payments, h.notifier, courseCache, db)
	h.quiz = NewQuizService(h.courses, h.enrollments, repository.NewQuizRepository(db), repository.NewQuizSubmissionRepository(db), lectures, h.notifier, db)
	h.assignment = NewAssignmentService(h.courses, h.enrollments, repository.NewAssignmentRepository(db), lectures, h.store, h.reviewer, h.notifier, cfg)
	h.review = NewReviewService(h.courses, h.enrollments, repository.NewReviewRepository(db), courseCache, db)
	h.payment = NewPaymentService(payments, h.courses, h.enrollments, h.users, h.gateway, h.notifier, courseCache, db)
	h.liveSession = NewLiveSessionService(h.courses, h.enrollments, repository.NewLiveSessionRepository(db), h.notifier, db)
	h.support = NewSupportService(repository.NewSupportRepository(db), h.users, h.notifier, db)
	h.certificates = NewCertificateService(repository.NewCertificateRepository(db), h.enrollments, h.courses, h.users, h.store, h.renderer)
	h.media = NewMediaService(h.store, cfg)
	h.video = NewVideoService(h.videos)
	return h
}

func (h *harness) actor(role string) (Actor, *model.User) {
	u := testutil.SeedUser(h.t, h.db, role)
	return Actor{ID: u.ID, Role: u.Role}, u
}

func (h *harness) notificationCount(userID uuid.UUID) int {
	list, err := h.notifications.FindByUserID(h.ctx, userID, false, 100)
	require.NoError(h.t, err)
	return len(list)
}
