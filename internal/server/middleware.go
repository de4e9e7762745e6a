package server

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
)

// RequestLogger logs one structured line per request via logrus and attaches
// the client IP to the request context for audit entries.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(audit.WithClientIP(c.Request.Context(), c.ClientIP()))

		c.Next()

		entry := logger.WithFields(logFields(c, start))
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			entry = entry.WithField("trace.id", span.SpanContext().TraceID().String())
		}
		if len(c.Errors) > 0 {
			entry.Errorf("request failed: %v", c.Errors.String())
		} else {
			entry.Info("request processed")
		}
	}
}

// Recovery converts panics into a server_error response and logs the stack.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := make([]byte, 2048)
				stack = stack[:runtime.Stack(stack, false)]

				logger.WithFields(logFields(c, time.Now())).WithFields(logrus.Fields{
					"error.message":     err,
					"error.stack_trace": string(stack),
				}).Error("a panic occurred")

				span := trace.SpanFromContext(c.Request.Context())
				if span.SpanContext().IsValid() {
					span.SetStatus(codes.Error, "panic occurred")
				}

				httperr.Write(c, httperr.ErrServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

func logFields(c *gin.Context, start time.Time) logrus.Fields {
	return logrus.Fields{
		"http.request.method":       c.Request.Method,
		"url.path":                  c.Request.URL.Path,
		"url.query":                 c.Request.URL.RawQuery,
		"http.response.status_code": c.Writer.Status(),
		"http.response.body.bytes":  c.Writer.Size(),
		"client.ip":                 c.ClientIP(),
		"user_agent.original":       c.Request.UserAgent(),
		"event.duration":            time.Since(start).Seconds(),
	}
}

// NoRoute renders the standard error body for unknown paths.
func NoRoute(c *gin.Context) {
	httperr.Write(c, httperr.ErrNotFound)
}
