// Package server exposes the booking page over HTTP. Every response is a
// JSON view of the booking state; mutations redirect to the new link.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"calbook/internal/booking"
	"calbook/internal/config"
	"calbook/internal/models"
	"calbook/internal/slot"
)

// Backend is the part of the API client the booking page needs.
type Backend interface {
	booking.AvailabilitySource
	booking.MeetingCreator
	PublicEvent(ctx context.Context, eventID string) (models.EventType, error)
}

type Server struct {
	logger          *slog.Logger
	backend         Backend
	appURL          *url.URL
	defaultTimezone string
	hourType        slot.HourType
	now             func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now, which decides the default booking date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(logger *slog.Logger, backend Backend, cfg config.Config, opts ...Option) (*Server, error) {
	appURL, err := url.Parse(cfg.Booking.AppURL)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_URL: %w", err)
	}
	hourType, err := slot.ParseHourType(cfg.Booking.HourType)
	if err != nil {
		return nil, fmt.Errorf("invalid HOUR_TYPE: %w", err)
	}
	s := &Server{
		logger:          logger,
		backend:         backend,
		appURL:          appURL,
		defaultTimezone: cfg.Booking.DefaultTimezone,
		hourType:        hourType,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router(cfg config.CORSConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(newCORSMiddleware(s.logger, cfg))
	engine.Use(requestLogger(s.logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	book := engine.Group("/book/:eventID")
	{
		book.GET("", s.viewBooking)
		book.POST("/date", s.selectDate)
		book.POST("/slot", s.selectSlot)
		book.POST("/timezone", s.changeTimezone)
		book.POST("/next", s.advance)
		book.POST("/back", s.retreat)
		book.POST("/confirm", s.confirm)
		book.POST("/reset", s.reset)
	}
	engine.GET("/integrations/return", s.integrationReturn)
	return engine
}

func newCORSMiddleware(logger *slog.Logger, cfg config.CORSConfig) gin.HandlerFunc {
	logger.Info("CORS middleware initialized", "allowOrigins", cfg.AllowOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

const requestIDHeader = "X-Request-ID"

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status_code", status),
			slog.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.LogAttrs(c.Request.Context(), level, "Request completed", attrs...)
	}
}
