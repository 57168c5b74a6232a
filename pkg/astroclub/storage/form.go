package storage

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
)

// FormFile returns the upload in field, or nil when the request has none.
// Non-multipart requests have no files.
func FormFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Validation("invalid multipart body: %v", err)
	}
	return fh, nil
}

// FormFiles returns every upload in field, at most max of them
func FormFiles(c *gin.Context, field string, max int) ([]*multipart.FileHeader, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.Validation("invalid multipart body: %v", err)
	}
	files := form.File[field]
	if len(files) > max {
		return nil, apperrors.Validation("at most %d files may be uploaded", max)
	}
	return files, nil
}
