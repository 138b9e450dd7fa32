package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondError(ctx, err)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorAPIError(t *testing.T) {
	status, body := respond(t, apierr.Conflict("slug_taken", "slug %q is already in use", "go"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "slug_taken", body.Code)
	assert.Equal(t, `slug "go" is already in use`, body.Message)

	status, body = respond(t, apierr.Validation("title is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"title is required"}, body.Details)
}

func TestRespondErrorFallback(t *testing.T) {
	status, body := respond(t, errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.Equal(t, "db exploded", body.Detail)
	assert.Empty(t, body.Code)
}

func TestUUIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	id := uuid.New()
	ctx.Params = gin.Params{{Key: "id", Value: id.String()}, {Key: "bad", Value: "123"}}

	got, err := UUIDParam(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = UUIDParam(ctx, "bad")
	assert.True(t, apierr.Is(err, http.StatusBadRequest))
}

func TestActorDefaultsToAnonymous(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, Actor(ctx).Authenticated())

	actor := service.Actor{ID: uuid.New(), Role: "student"}
	SetActor(ctx, actor)
	assert.Equal(t, actor, Actor(ctx))
}

func TestBindJSONReportsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	ctx.Request.Header.Set("Content-Type", "application/json")

	var req dto.LoginDTO
	err := BindJSON(ctx, &req)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Len(t, apiErr.Details, 2)

	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	ctx.Request.Header.Set("Content-Type", "application/json")
	err = BindJSON(ctx, &req)
	apiErr, ok = apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"request body is empty"}, apiErr.Details)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "instructor_id", toSnake("InstructorID"))
	assert.Equal(t, "discount_price", toSnake("DiscountPrice"))
	assert.Equal(t, "email", toSnake("email"))
}
