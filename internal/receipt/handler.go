package receipt

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/spf13/afero"
)

type ServiceAPI interface {
	Upload(ctx context.Context, ownerID int64, filename string, r io.Reader) (string, error)
}

type UploadResponse struct {
	URL string `json:"url"`
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	maxBytes int64
	prefix   string
	files    http.Handler
	fs       afero.Fs
}

// NewHandler serves uploads and read-only downloads from fs. prefix is the
// URL path the download route is mounted under.
func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, fs afero.Fs, prefix string, maxBytes int64) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		maxBytes:    maxBytes,
		prefix:      prefix,
		fs:          fs,
		files:       http.StripPrefix(prefix, http.FileServer(afero.NewHttpFs(fs))),
	}
}

// Upload handles POST /receipts with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.Logger.Warn("receipt upload: bad multipart body", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, internal.ErrUploadFailed.WithCause(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.Service.Upload(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, UploadResponse{URL: url})
}

// Serve handles GET /receipts/*. Directories are never listed.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := rooted(strings.TrimPrefix(r.URL.Path, h.prefix))
	info, err := h.fs.Stat(key)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}
