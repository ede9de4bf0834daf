package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hugh/orgbook/internal/accounts"
	"github.com/hugh/orgbook/internal/api/dto"
	"github.com/hugh/orgbook/internal/api/middleware"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/roles"
)

type AccountHandler struct {
	accounts *accounts.Service
}

func NewAccountHandler(accountService *accounts.Service) *AccountHandler {
	return &AccountHandler{accounts: accountService}
}

// Create handles POST /api/v1/accounts: hierarchy-gated administrative
// creation.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	account, err := h.accounts.Create(r.Context(), accounts.CreateInput{
		Handle:   req.Handle,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	filter := accounts.Filter{
		Role:      roles.Role(r.URL.Query().Get("role")),
		CreatedAt: r.URL.Query().Get("createdAt"),
		Search:    r.URL.Query().Get("search"),
		Limit:     limit,
		Page:      page,
	}

	if filter.Role != "" && !filter.Role.Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid role filter"})
		return
	}

	list, err := h.accounts.FindAll(r.Context(), filter, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Me handles GET /api/v1/accounts/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	account, err := h.accounts.FindOne(r.Context(), actingID, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid account ID"})
		return
	}

	account, err := h.accounts.FindOne(r.Context(), id, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Update handles PATCH /api/v1/accounts/{id}. Accepts JSON, or
// multipart/form-data when an attachment is being uploaded.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid account ID"})
		return
	}

	var req dto.UpdateAccountRequest
	var upload *attachments.Upload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart body"})
			return
		}
		req = dto.UpdateAccountRequest{
			Handle:      formString(r, "handle"),
			Email:       formString(r, "email"),
			Password:    formString(r, "password"),
			OldPassword: formString(r, "oldPassword"),
			File:        formString(r, "file"),
		}
		if raw := formString(r, "role"); raw != nil {
			role := roles.Role(*raw)
			req.Role = &role
		}
		var err error
		if upload, err = readUpload(r); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid file upload"})
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	account, err := h.accounts.Update(r.Context(), id, accounts.UpdateInput{
		Handle:          req.Handle,
		Email:           req.Email,
		Password:        req.Password,
		OldPassword:     req.OldPassword,
		Role:            req.Role,
		ClearAttachment: req.ClearAttachment(),
	}, actingID, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/v1/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid account ID"})
		return
	}

	if err := h.accounts.Remove(r.Context(), id, actingID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Account has been successfully removed"})
}
