package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/storage"
	"github.com/gin-gonic/gin"
)

// Uploader stores images in object storage and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, uri, bucket string) (string, error)
	UploadStream(ctx context.Context, r io.Reader, filename, bucket string) (string, error)
}

type UploadHandler struct {
	uploader Uploader
}

func NewUploadHandler(uploader Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

type uploadURIRequest struct {
	URI    string `json:"uri" binding:"required"`
	Bucket string `json:"bucket"`
}

// Upload accepts a multipart "file" field or a JSON {uri, bucket} body whose
// uri is an http(s) URL. Device-local files arrive as multipart.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
		return
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
			return
		}
		defer f.Close()
		url, err := h.uploader.UploadStream(c.Request.Context(), f, fh.Filename, c.PostForm("bucket"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"url": url})
		return
	}

	var req uploadURIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !storage.IsRemoteURI(req.URI) {
		writeError(c, errs.ErrUnsupportedImageURI)
		return
	}
	url, err := h.uploader.Upload(c.Request.Context(), req.URI, req.Bucket)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
