package handlers

import (
	"errors"
	"io"
	"net/http"

	"quill/internal/service"

	"github.com/labstack/echo/v4"
)

type postForm struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

func (h *Handler) ListBlogs(c echo.Context) error {
	posts, err := h.svc.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return mapServiceError(err, "Failed to load blogs")
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetBlog(c echo.Context) error {
	post, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err, "Failed to load blog")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handler) CreateBlog(c echo.Context) error {
	form, upload, err := h.readPostForm(c)
	if err != nil {
		return err
	}

	post, err := h.svc.Create(c.Request().Context(), service.CreateInput{
		Title:   form.Title,
		Content: form.Content,
		Upload:  upload,
	})
	if err != nil {
		return mapServiceError(err, "Failed to save blog")
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *Handler) UpdateBlog(c echo.Context) error {
	form, upload, err := h.readPostForm(c)
	if err != nil {
		return err
	}

	post, err := h.svc.Update(c.Request().Context(), c.Param("id"), service.UpdateInput{
		Title:   form.Title,
		Content: form.Content,
		Upload:  upload,
	})
	if err != nil {
		return mapServiceError(err, "Failed to update blog")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handler) DeleteBlog(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapServiceError(err, "Failed to delete blog")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Blog deleted successfully"})
}

// readPostForm binds title and content from a multipart, url-encoded or JSON
// body. Only multipart bodies can carry a file.
func (h *Handler) readPostForm(c echo.Context) (postForm, *service.Upload, error) {
	var form postForm
	if err := c.Bind(&form); err != nil {
		return postForm{}, nil, err
	}
	if !isMultipart(c) {
		return form, nil, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil, nil
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return postForm{}, nil, he
		}
		return postForm{}, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart body").SetInternal(err)
	}
	upload := &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
	return form, upload, nil
}
