package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"stillcast/internal/apperrors"
	"stillcast/internal/domain"
	"stillcast/internal/metrics"
	"stillcast/internal/storage"
)

// ConvertServiceI defines the interface for conversion business logic.
type ConvertServiceI interface {
	Convert(ctx context.Context, req *domain.ConvertRequest) (*domain.ConversionResult, error)
	Resolve(id string) (string, error)
}

// ConvertHandler handles HTTP requests for conversions and downloads.
type ConvertHandler struct {
	service        ConvertServiceI
	store          *storage.FileStore
	maxUploadBytes int64
	baseURL        string
	logger         *slog.Logger
}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler(service ConvertServiceI, store *storage.FileStore, maxUploadBytes int64, baseURL string, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		service:        service,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		baseURL:        baseURL,
		logger:         logger,
	}
}

// Convert handles POST /convert: multipart form with required "audio" and
// "image" file parts.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Two parts plus form overhead; individual parts are checked below.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			metrics.UploadsRejected.WithLabelValues("too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, apperrors.ErrPayloadTooLarge.Error())
			return
		}
		h.logger.Warn("failed to parse multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	audioFile, audioHeader, err := r.FormFile("audio")
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("missing_part").Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: audio", apperrors.ErrMissingPart))
		return
	}
	defer audioFile.Close()

	imageFile, imageHeader, err := r.FormFile("image")
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("missing_part").Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: image", apperrors.ErrMissingPart))
		return
	}
	defer imageFile.Close()

	if audioHeader.Size > h.maxUploadBytes || imageHeader.Size > h.maxUploadBytes {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadBytes))
		return
	}

	req, err := h.saveUploads(audioFile, audioHeader, imageFile, imageHeader)
	if err != nil {
		h.logger.Error("failed to store uploads", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	result, err := h.service.Convert(ctx, req)
	if err != nil {
		h.writeConvertError(w, err)
		return
	}

	h.logger.Info("conversion succeeded", "id", result.ID)

	writeJSON(w, http.StatusOK, domain.ConvertResponse{
		URL:       fmt.Sprintf("%s/download/%s", h.baseURL, result.ID),
		ID:        result.ID,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
	})
}

// Download handles GET /download/{downloadID}: streams a live artifact.
func (h *ConvertHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadID")

	path, err := h.service.Resolve(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "artifact not found or expired")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		// Lost a race with the janitor or external deletion.
		writeError(w, http.StatusNotFound, "artifact not found or expired")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.Error("failed to stat artifact", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".mp4"))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))

	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("artifact stream interrupted", "id", id, "error", err)
		return
	}

	metrics.DownloadsServed.Inc()
}

func (h *ConvertHandler) saveUploads(
	audioFile multipart.File, audioHeader *multipart.FileHeader,
	imageFile multipart.File, imageHeader *multipart.FileHeader,
) (*domain.ConvertRequest, error) {
	audioPath, err := h.store.SaveUpload(audioFile, filepath.Ext(audioHeader.Filename))
	if err != nil {
		return nil, fmt.Errorf("save audio: %w", err)
	}

	imagePath, err := h.store.SaveUpload(imageFile, filepath.Ext(imageHeader.Filename))
	if err != nil {
		h.store.Remove(audioPath)
		return nil, fmt.Errorf("save image: %w", err)
	}

	return &domain.ConvertRequest{AudioPath: audioPath, ImagePath: imagePath}, nil
}

func (h *ConvertHandler) writeConvertError(w http.ResponseWriter, err error) {
	var encodeErr *apperrors.EncodeError

	switch {
	case errors.Is(err, apperrors.ErrEncodeTimeout):
		writeError(w, http.StatusGatewayTimeout, "encoding timed out")

	case errors.As(err, &encodeErr):
		h.logger.Error("encoding failed", "error", encodeErr, "stderr", encodeErr.Stderr)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "encoding failed",
			"detail": encodeErr.Error(),
		})

	case errors.Is(err, apperrors.ErrEncoderSpawn):
		h.logger.Error("encoder spawn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "encoder could not be started")

	case errors.Is(err, apperrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		h.logger.Error("conversion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
