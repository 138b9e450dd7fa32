package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderRequestID   = "X-Request-Id"
	HeaderProcessTime = "X-Process-Time"
)

// RequestID propagates or mints a request id and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := strings.TrimSpace(ctx.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("request_id", id)
		ctx.Writer.Header().Set(HeaderRequestID, id)
		ctx.Next()
	}
}

// ProcessTime reports handler latency in seconds. The header is written just
// before the body so it survives handlers that write their own response.
func ProcessTime() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Writer = &timedWriter{ResponseWriter: ctx.Writer, start: start}
		ctx.Next()
	}
}

type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(HeaderProcessTime, fmt.Sprintf("%.6f", time.Since(w.start).Seconds()))
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// RequestLogger logs every request through zerolog.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		var event *zerolog.Event
		switch {
		case param.StatusCode >= 500:
			event = log.Error()
		case param.StatusCode >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event = event.
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent())
		if id, ok := param.Keys["request_id"].(string); ok {
			event = event.Str("request_id", id)
		}
		if span := trace.SpanContextFromContext(param.Request.Context()); span.HasTraceID() {
			event = event.Str("trace_id", span.TraceID().String())
		}
		if param.ErrorMessage != "" {
			event = event.Str("error_message", param.ErrorMessage)
		}
		event.Msg("gin_request")
		return ""
	})
}

// Recovery turns panics into the standard 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(ctx *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", ctx.Request.URL.Path).Msg("Recovered from panic")
		controller.RespondInternal(ctx, fmt.Errorf("%v", recovered))
	})
}
