package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is slog with the booking service's event helpers attached
type Logger struct {
	*slog.Logger
}

// New builds a logger writing to w. Debug-mode gin gets the text handler,
// everything else emits JSON lines.
func New(w io.Writer, level slog.Level, text bool) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if text {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler).With(slog.String("service", "engracedsmile"))}
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info
func ParseLevel(raw string) slog.Level {
	if strings.EqualFold(strings.TrimSpace(raw), "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LogHTTPRequest writes one access line; 5xx logs at error and 4xx at warn
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	status := c.Writer.Status()
	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	}
	if q := c.Request.URL.RawQuery; q != "" {
		attrs = append(attrs, slog.String("query", q))
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if ua := c.Request.UserAgent(); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}
	l.Logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
}

// LogHTTPError records an error that was turned into a response
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	if c.Request == nil {
		l.Logger.Error("http error", slog.Int("status", statusCode), slog.String("error", err.Error()))
		return
	}
	l.Logger.ErrorContext(c.Request.Context(),
		"http error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// LogBookingCreated logs when a pending booking is stored
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, reference, tripID string) {
	l.Logger.InfoContext(ctx,
		"booking created",
		slog.String("booking_id", bookingID),
		slog.String("booking_reference", reference),
		slog.String("trip_id", tripID),
	)
}

// LogBookingConfirmed logs a booking that moved to confirmed/paid. source is
// the path that won the transition (verify or webhook).
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, reference, source string) {
	l.Logger.InfoContext(ctx,
		"booking confirmed",
		slog.String("booking_id", bookingID),
		slog.String("payment_reference", reference),
		slog.String("source", source),
	)
}

// LogBookingFailed logs a booking whose payment did not go through
func (l *Logger) LogBookingFailed(ctx context.Context, bookingID, reference, reason string) {
	l.Logger.WarnContext(ctx,
		"booking payment failed",
		slog.String("booking_id", bookingID),
		slog.String("payment_reference", reference),
		slog.String("reason", reason),
	)
}

// LogBookingCancelled logs when a booking is cancelled
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, tripID string, seatRestored bool) {
	l.Logger.InfoContext(ctx,
		"booking cancelled",
		slog.String("booking_id", bookingID),
		slog.String("trip_id", tripID),
		slog.Bool("seat_restored", seatRestored),
	)
}

// LogPaymentVerification logs the outcome of a gateway verify call
func (l *Logger) LogPaymentVerification(ctx context.Context, reference string, succeeded bool, duration time.Duration, err error) {
	if err != nil {
		l.Logger.ErrorContext(ctx,
			"payment verification error",
			slog.String("payment_reference", reference),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Logger.InfoContext(ctx,
		"payment verification",
		slog.String("payment_reference", reference),
		slog.Bool("succeeded", succeeded),
		slog.Duration("duration", duration),
	)
}

// LogWebhookRejected logs an inbound webhook that failed authentication
func (l *Logger) LogWebhookRejected(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"webhook rejected",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"authentication succeeded",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"authentication failed",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"rate limit exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

var defaultLogger = New(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")), gin.Mode() == gin.DebugMode)

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}
