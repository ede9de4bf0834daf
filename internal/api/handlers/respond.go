package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/orgbook/internal/apperrors"
	"github.com/hugh/orgbook/internal/api/dto"
	"github.com/hugh/orgbook/internal/attachments"
)

// maxUploadBytes caps multipart attachment uploads.
const maxUploadBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a registry error kind to its HTTP status. Unknown errors
// never leak internals.
func writeError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case apperrors.KindConflict:
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case apperrors.KindForbidden:
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case apperrors.KindBadRequest:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case apperrors.KindUnauthorized:
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}

// parseID reads the {id} route parameter as a positive integer.
func parseID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formString returns the form value when the field was present at all.
func formString(r *http.Request, key string) *string {
	if vs, ok := r.Form[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

func formInt(r *http.Request, key string) (*int, bool) {
	raw := formString(r, key)
	if raw == nil {
		return nil, true
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func formUint(r *http.Request, key string) (*uint, bool) {
	raw := formString(r, key)
	if raw == nil {
		return nil, true
	}
	v, err := strconv.ParseUint(*raw, 10, 64)
	if err != nil {
		return nil, false
	}
	u := uint(v)
	return &u, true
}

// readUpload extracts the optional "file" part of an already-parsed multipart
// request.
func readUpload(r *http.Request) (*attachments.Upload, error) {
	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &attachments.Upload{Data: data, MimeType: mimeType}, nil
}
