package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-contacts-cache/domain"
)

// CategoryService is the category surface the handlers call.
type CategoryService interface {
	GetAll(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (domain.Category, error)
	GetByName(ctx context.Context, name string) (domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (domain.Category, error)
	Update(ctx context.Context, patch domain.CategoryPatch) (domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// ContactService is the contact surface the handlers call.
type ContactService interface {
	GetAll(ctx context.Context) ([]domain.ContactWithCategory, error)
	GetByID(ctx context.Context, id string) (domain.ContactWithCategory, error)
	Create(ctx context.Context, input domain.ContactInput) (domain.ContactWithCategory, error)
	Update(ctx context.Context, patch domain.ContactPatch) (domain.ContactWithCategory, error)
	Delete(ctx context.Context, id string) error
}

// Config carries the router dependencies. Gatherer and Health are
// optional; without them /metrics and the health probe are not wired.
type Config struct {
	Categories CategoryService
	Contacts   ContactService
	Logger     log.Interface
	Gatherer   prometheus.Gatherer
	Health     func(ctx context.Context) error
}

// NewRouter builds the echo instance serving the categories and contacts
// API.
func NewRouter(cfg Config) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Log
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/healthz", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	categories := &categoryHandler{service: cfg.Categories}
	g := e.Group("/categories")
	g.GET("", categories.list)
	g.GET("/query", categories.query)
	g.GET("/:id", categories.get)
	g.POST("", categories.create)
	g.PUT("/:id", categories.update)
	g.DELETE("/:id", categories.delete)

	contacts := &contactHandler{service: cfg.Contacts}
	c := e.Group("/contacts")
	c.GET("", contacts.list)
	c.GET("/:id", contacts.get)
	c.POST("", contacts.create)
	c.PUT("/:id", contacts.update)
	c.DELETE("/:id", contacts.delete)

	return e
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// bindAndValidate decodes the request body into dst and validates it.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(dst)
}

func healthHandler(check func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func requestLogger(logger log.Interface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.WithFields(log.Fields{
				"method":   req.Method,
				"path":     req.URL.Path,
				"status":   c.Response().Status,
				"duration": time.Since(start),
			}).Debug("request")
			return nil
		}
	}
}
