// Package images accepts post image uploads and stores them in blob storage.
package images

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/pkg/formatting"
	"github.com/JaimeStill/agora/pkg/handlers"
	"github.com/JaimeStill/agora/pkg/routes"
	"github.com/JaimeStill/agora/pkg/storage"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is the response to a successful upload.
type Upload struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Handler provides the image upload endpoint.
type Handler struct {
	store   storage.System
	maxSize int64
	logger  *slog.Logger
}

// NewHandler creates a Handler. A nil store rejects uploads with
// storage.ErrDisabled.
func NewHandler(store storage.System, maxSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		maxSize: maxSize,
		logger:  logger.With("handler", "images"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/images",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
		},
	}
}

// Upload stores the multipart "file" field and returns its public URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.fail(w, storage.ErrDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, storage.ErrTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	if header.Size > h.maxSize {
		h.fail(w, storage.ErrTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if int64(len(data)) > h.maxSize {
		h.fail(w, storage.ErrTooLarge)
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		h.fail(w, storage.ErrUnsupported)
		return
	}

	key := "posts/" + uuid.NewString() + ext
	url, err := h.store.Upload(r.Context(), key, bytes.NewReader(data), contentType)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Info("image uploaded", "key", key, "size", formatting.FormatBytes(int64(len(data))))
	handlers.RespondJSON(w, http.StatusCreated, Upload{
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
}
