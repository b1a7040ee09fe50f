package httpapi

import (
	"net/http"
	"strconv"

	"quill/internal/config"
	"quill/internal/httpapi/handlers"
	"quill/internal/httpapi/middlewares"
	"quill/internal/ratelimit"
	"quill/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// multipartOverhead is the room left for form fields and part headers on top
// of the upload cap.
const multipartOverhead = 1 << 20

type API struct {
	cfg     config.Config
	logger  logrus.FieldLogger
	handler *handlers.Handler
}

func New(cfg config.Config, svc *service.Service, logger logrus.FieldLogger) *API {
	return &API{
		cfg:     cfg,
		logger:  logger,
		handler: handlers.New(svc),
	}
}

func (a *API) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(a.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middlewares.NewRequestLogger(a.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderAccept,
			echo.HeaderContentType,
		},
		ExposeHeaders: []string{
			echo.HeaderXRequestID,
			"RateLimit-Limit",
			"RateLimit-Remaining",
			"RateLimit-Reset",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 600,
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
	e.Use(a.bodyLimits()...)

	limits := ratelimit.Config{
		Window: a.cfg.RateLimitWindow,
		Read:   a.cfg.RateLimitRead,
		Write:  a.cfg.RateLimitWrite,
	}
	if limits.Enabled() {
		e.Use(middlewares.NewRateLimitMiddleware(limits))
	}

	a.registerRoutes(e)
	return e
}

// bodyLimits caps multipart requests at the upload limit plus form overhead
// and every other body at MaxBodyBytes.
func (a *API) bodyLimits() []echo.MiddlewareFunc {
	multipart := func(c echo.Context) bool {
		return isMultipartRequest(c.Request())
	}
	return []echo.MiddlewareFunc{
		middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			Limit:   strconv.FormatInt(a.cfg.MaxUploadBytes+multipartOverhead, 10),
			Skipper: func(c echo.Context) bool { return !multipart(c) },
		}),
		middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			Limit:   strconv.FormatInt(a.cfg.MaxBodyBytes, 10),
			Skipper: multipart,
		}),
	}
}
