package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *API) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	blog := e.Group("/blog")
	blog.GET("", a.handler.ListBlogs)
	blog.GET("/:id", a.handler.GetBlog)
	blog.POST("", a.handler.CreateBlog)
	blog.PUT("/:id", a.handler.UpdateBlog)
	blog.DELETE("/:id", a.handler.DeleteBlog)

	e.GET("/files/:name", a.handler.ServeFile)
	e.HEAD("/files/:name", a.handler.ServeFile)
}

func isMultipartRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
