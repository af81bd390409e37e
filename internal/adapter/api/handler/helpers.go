package handler

import (
	stderrors "errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/errors"
)

func currentActor(c echo.Context) (policy.Actor, error) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return policy.Actor{}, errors.Unauthorized("Authentication required", nil)
	}
	return actor, nil
}

// bindAndValidate binds the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Validation("Invalid request body", err)
	}
	return c.Validate(req)
}

// formFiles opens every file sent under field. The returned func closes them.
func formFiles(c echo.Context, field string) ([]service.FileUpload, func(), error) {
	form, err := c.MultipartForm()
	if stderrors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, errors.Validation("Invalid multipart form", err)
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]service.FileUpload, 0, len(form.File[field]))
	for _, header := range form.File[field] {
		src, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, errors.Validation("Unable to read "+header.Filename, err)
		}
		opened = append(opened, src)
		uploads = append(uploads, toUpload(header, src))
	}
	return uploads, closeAll, nil
}

// formFile opens the optional single file sent under field; nil when absent.
func formFile(c echo.Context, field string) (*service.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, errors.Validation("Invalid file field "+field, err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, func() {}, errors.Validation("Unable to read "+header.Filename, err)
	}
	upload := toUpload(header, src)
	return &upload, func() { src.Close() }, nil
}

func toUpload(header *multipart.FileHeader, src multipart.File) service.FileUpload {
	return service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Content:     src,
	}
}
