package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"quill/internal/storage"

	"github.com/labstack/echo/v4"
)

// ServeFile streams an uploaded media file. Range and conditional requests
// are handled by http.ServeContent.
func (h *Handler) ServeFile(c echo.Context) error {
	name := c.Param("name")
	f, err := h.svc.Media().Open(c.Request().Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidName):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid file name")
		case errors.Is(err, storage.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file").SetInternal(err)
		}
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		c.Response().Header().Set(echo.HeaderContentType, ct)
	}
	http.ServeContent(c.Response(), c.Request(), name, f.ModTime(), f)
	return nil
}
