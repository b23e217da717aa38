package logger

import (
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

const accessLogMessage = "HTTP Request"

type accessLogOptions struct {
	quiet map[string]bool
}

type AccessLogOption func(*accessLogOptions)

// WithQuietPaths logs successful requests to paths at debug level. Probes
// such as /health would otherwise drown the access log.
func WithQuietPaths(paths ...string) AccessLogOption {
	return func(o *accessLogOptions) {
		for _, p := range paths {
			o.quiet[p] = true
		}
	}
}

// GinMiddleware writes one access log line per request. Handlers get the
// request logger from GetGinLogger, services from L(ctx).
func GinMiddleware(log *zap.Logger, opts ...AccessLogOption) gin.HandlerFunc {
	o := accessLogOptions{quiet: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		started := time.Now()
		req := c.Request

		ctx, reqLog := WithRequestID(req.Context(),
			log.With(zap.String("method", req.Method), zap.String("path", req.URL.Path)),
			c.GetString("request_id"))
		c.Set(ginLoggerKey, reqLog)
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 9)
		fields = append(fields,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(started)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", max(c.Writer.Size(), 0)),
			zap.String("user_agent", req.UserAgent()),
		)
		if route := c.FullPath(); route != "" && route != req.URL.Path {
			fields = append(fields, zap.String("route", route))
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		reqLog.Log(accessLevel(status, o.quiet[req.URL.Path]), accessLogMessage, fields...)
	}
}

func accessLevel(status int, quiet bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case quiet:
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a 500 error envelope. A client that
// hung up mid-response only gets a warning; there is nobody left to answer.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString("request_id")
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", rec),
			}
			if brokenPipe(rec) {
				log.Warn("Client connection lost", fields...)
				c.Abort()
				return
			}
			log.Error("Panic recovered", append(fields, zap.Stack("stacktrace"))...)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "An internal error occurred",
					"request_id": requestID,
				},
			})
		}()
		c.Next()
	}
}

func brokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) && (errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)) {
		return true
	}
	msg := strings.ToLower(opErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}

// GetGinLogger returns the request logger, or a no-op logger outside
// GinMiddleware
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
