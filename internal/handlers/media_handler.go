package handlers

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/driftchat/DriftChat-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
)

type MediaHandler struct {
	mediaService *service.MediaService
	s3           *storage.S3Storage
}

func NewMediaHandler(mediaService *service.MediaService, s3 *storage.S3Storage) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, s3: s3}
}

// Upload accepts one multipart file and returns the attachment record whose
// id clients reference in SEND_MEDIA_MESSAGE frames.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	if h.mediaService == nil {
		return httpx.Unavailable(c, "storage_not_configured", "Storage not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "Invalid file upload")
	}
	defer f.Close()

	media, err := h.mediaService.Upload(c.Context(), userID, service.UploadInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Body:     f,
	})
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) {
			return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "upload_too_large", "Upload exceeds maximum size")
		}
		if errors.Is(err, service.ErrEmptyUpload) {
			return httpx.BadRequest(c, "empty_upload", "Upload is empty")
		}
		log.Printf("media: upload by user %d failed: %v", userID, err)
		return httpx.Internal(c, "media_upload_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"media": media,
	})
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

// GetObject streams a stored object back to the client with ETag-based
// revalidation. Route: GET /media/*
func (h *MediaHandler) GetObject(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Unavailable(c, "storage_not_configured", "Storage not configured")
	}

	keyParam := strings.TrimSpace(c.Params("*"))
	key, err := storage.SafeJoinObjectKey("", keyParam)
	if err != nil {
		return httpx.NotFound(c, "not_found", "Not found")
	}

	obj, st, err := h.s3.GetObject(c.Context(), key)
	if err != nil {
		// Hide details.
		var resp minio.ErrorResponse
		if errors.As(err, &resp) {
			if resp.StatusCode == 404 || resp.Code == "NoSuchKey" || resp.Code == "NoSuchObject" {
				return httpx.NotFound(c, "not_found", "Not found")
			}
		}
		log.Printf("media: fetch of %q failed: %v", key, err)
		return httpx.Internal(c, "media_fetch_failed")
	}

	etag := st.ETag
	if etag != "" {
		c.Set("ETag", "\""+etag+"\"")
		if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
			_ = obj.Close()
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	if !st.LastModified.IsZero() {
		c.Set("Last-Modified", st.LastModified.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	}

	c.Set("Cache-Control", "private, max-age=31536000, immutable")
	if st.ContentType != "" {
		c.Type(st.ContentType)
	} else {
		c.Type("application/octet-stream")
	}
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}

	// Stream object while capturing any mid-stream errors.
	// (Fiber versions vary; use underlying fasthttp stream writer.)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		if copyErr != nil {
			log.Printf("media: stream of %q failed after %d bytes: %v", key, n, copyErr)
			return
		}
		if err := w.Flush(); err != nil {
			log.Printf("media: stream flush of %q failed: %v", key, err)
		}
	})
	return nil
}
