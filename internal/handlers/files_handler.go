package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/photomap/backend/internal/middleware"
	"github.com/photomap/backend/internal/models"
	"github.com/photomap/backend/internal/services"
)

const maxFilesPerPage = 500

// FilesHandler serves the map of confirmed photos and the admin review list.
type FilesHandler struct {
	files  services.FileStore
	logger *slog.Logger
}

func NewFilesHandler(files services.FileStore, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{files: files, logger: logger.With("component", "files_handler")}
}

// ListFiles returns allowed files, optionally restricted to a bounding box.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	bounds, problems := parseBounds(query)
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(problems))
		return
	}

	allowed := true
	h.list(w, r, models.ListFilesQuery{Bounds: bounds, Allowed: &allowed, Limit: parseLimit(query.Get("limit"))})
}

func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	ctx, cancel := contextWithTimeout(r.Context(), storeTimeout)
	defer cancel()

	f, err := h.files.GetFile(ctx, fileID)
	if err != nil && !errors.Is(err, services.ErrFileNotFound) {
		h.logger.Error("get file failed", "file_id", fileID, "err", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get file"))
		return
	}
	if f == nil || !f.IsAllowed {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("File not found"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(f))
}

// ListAllFiles is the admin listing; pending=true restricts it to files still
// waiting for confirmation.
func (h *FilesHandler) ListAllFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := models.ListFilesQuery{Limit: parseLimit(query.Get("limit"))}
	if pending, err := strconv.ParseBool(query.Get("pending")); err == nil && pending {
		allowed := false
		q.Allowed = &allowed
	}
	h.list(w, r, q)
}

func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	ctx, cancel := contextWithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.files.DeleteFile(ctx, fileID); err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("File not found"))
			return
		}
		h.logger.Error("delete file failed", "file_id", fileID, "err", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete file"))
		return
	}

	h.logger.Info("file deleted by admin", "file_id", fileID, "admin", middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "File deleted successfully"}))
}

func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request, q models.ListFilesQuery) {
	ctx, cancel := contextWithTimeout(r.Context(), storeTimeout)
	defer cancel()

	files, err := h.files.ListFiles(ctx, q)
	if err != nil {
		h.logger.Error("list files failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list files"))
		return
	}
	if files == nil {
		files = []*models.File{}
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.FileListResponse{Files: files, Count: len(files)}))
}

// parseBounds returns nil when no bound is given. A partial or inverted box
// yields one message per offending parameter.
func parseBounds(query url.Values) (*models.Bounds, map[string]string) {
	keys := []string{"minLat", "maxLat", "minLng", "maxLng"}
	given := false
	for _, k := range keys {
		if query.Get(k) != "" {
			given = true
		}
	}
	if !given {
		return nil, nil
	}

	var b models.Bounds
	dst := []*float64{&b.MinLat, &b.MaxLat, &b.MinLng, &b.MaxLng}
	problems := make(map[string]string)
	for i, k := range keys {
		raw := query.Get(k)
		if raw == "" {
			problems[k] = "is required with the other bounding box parameters"
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems[k] = "must be a number"
			continue
		}
		*dst[i] = v
	}
	if len(problems) > 0 {
		return nil, problems
	}
	if b.MinLat > b.MaxLat {
		problems["minLat"] = "must not exceed maxLat"
	}
	if b.MinLng > b.MaxLng {
		problems["minLng"] = "must not exceed maxLng"
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return &b, nil
}

func parseLimit(raw string) int {
	limit := maxFilesPerPage
	if raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxFilesPerPage {
		limit = maxFilesPerPage
	}
	return limit
}
