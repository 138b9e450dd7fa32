// Package controller holds the helpers shared by the user and admin
// controllers: error rendering, request binding and the caller identity.
package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
)

const actorKey = "actor"

// SetActor stores the authenticated caller on the request context.
func SetActor(ctx *gin.Context, actor service.Actor) {
	ctx.Set(actorKey, actor)
}

// Actor returns the caller, or the anonymous zero value.
func Actor(ctx *gin.Context) service.Actor {
	if v, ok := ctx.Get(actorKey); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}

// RespondError renders err as a dto.ErrorResponse. Errors that are not API
// errors are logged and reported as a generic 500.
func RespondError(ctx *gin.Context, err error) {
	if apiErr, ok := apierr.As(err); ok {
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", ctx.FullPath()).Str("code", apiErr.Code).Msg("Request failed")
		}
		ctx.AbortWithStatusJSON(apiErr.Status, dto.ErrorResponse{
			Message: apiErr.Error(),
			Code:    apiErr.Code,
			Details: apiErr.Details,
		})
		return
	}
	log.Error().Err(err).Str("method", ctx.Request.Method).Str("path", ctx.Request.URL.Path).Msg("Unhandled error")
	RespondInternal(ctx, err)
}

// RespondInternal writes the 500 fallback body.
func RespondInternal(ctx *gin.Context, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
		Message: "An unexpected error occurred",
		Detail:  detail,
	})
}

// UUIDParam parses the named path parameter as a UUID.
func UUIDParam(ctx *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("invalid_id", "%s must be a valid UUID", name)
	}
	return id, nil
}

// BindJSON binds and validates the request body.
func BindJSON(ctx *gin.Context, out interface{}) error {
	if err := ctx.ShouldBindJSON(out); err != nil {
		return bindingError(err)
	}
	return nil
}

// BindQuery binds and validates query parameters.
func BindQuery(ctx *gin.Context, out interface{}) error {
	if err := ctx.ShouldBindQuery(out); err != nil {
		return bindingError(err)
	}
	return nil
}

// BindForm binds and validates multipart or urlencoded form fields.
func BindForm(ctx *gin.Context, out interface{}) error {
	if err := ctx.ShouldBind(out); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldMessage(fe))
		}
		return apierr.Validation(details...)
	}
	if errors.Is(err, io.EOF) {
		return apierr.Validation("request body is empty")
	}
	return apierr.Validation(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "uuid":
		return field + " must be a valid UUID"
	case "slug":
		return field + " must contain only lowercase letters, digits and single hyphens"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormFile reads an optional multipart file. The returned closer must be
// called once the upload has been consumed.
func FormFile(ctx *gin.Context, field string) (*dto.FileUpload, func(), error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apierr.BadRequest("invalid_upload", "could not read %s: %v", field, err)
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, apierr.BadRequest("invalid_upload", "could not open %s: %v", field, err)
	}
	upload := &dto.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}
	return upload, func() { _ = f.Close() }, nil
}
