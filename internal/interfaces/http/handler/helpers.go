package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// formUpload opens an optional multipart file. The returned closer is never nil.
func formUpload(c *gin.Context, field string) (*appshared.Upload, func(), error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return toUpload(file, header), func() { _ = file.Close() }, nil
}

func toUpload(file multipart.File, header *multipart.FileHeader) *appshared.Upload {
	contentType := header.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return &appshared.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
}

// bindForm binds a multipart or urlencoded form
func (h *BaseHandler) bindForm(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return false
	}
	return true
}

// queryDecimal parses an optional decimal filter; a malformed value is a
// field error
func (h *BaseHandler) queryDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		h.FieldError(c, name, "Enter a number.")
		return nil, false
	}
	return &d, true
}

// queryUUID parses an optional UUID filter
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.FieldError(c, name, "Must be a valid UUID.")
		return nil, false
	}
	return &id, true
}
