package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hugh/orgbook/internal/api/dto"
	"github.com/hugh/orgbook/internal/api/middleware"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/organizations"
)

type OrganizationHandler struct {
	orgs *organizations.Service
}

func NewOrganizationHandler(orgService *organizations.Service) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgService}
}

// Create handles POST /api/v1/organizations. Accepts JSON, or
// multipart/form-data with an optional "file" attachment.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	var req dto.CreateOrganizationRequest
	var upload *attachments.Upload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart body"})
			return
		}
		capital, ok := formInt(r, "capital")
		if !ok {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Capital must be an integer"})
			return
		}
		ownerID, ok := formUint(r, "ownerId")
		if !ok {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Owner ID must be a positive integer"})
			return
		}
		if s := formString(r, "title"); s != nil {
			req.Title = *s
		}
		if s := formString(r, "service"); s != nil {
			req.Service = *s
		}
		if s := formString(r, "address"); s != nil {
			req.Address = *s
		}
		if capital != nil {
			req.Capital = *capital
		}
		if ownerID != nil {
			req.OwnerID = *ownerID
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

	org, err := h.orgs.Create(r.Context(), organizations.CreateInput{
		Title:   req.Title,
		Service: req.Service,
		Address: req.Address,
		Capital: req.Capital,
		OwnerID: req.OwnerID,
	}, actingID, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

// List handles GET /api/v1/organizations.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))
	ownerID, _ := strconv.ParseUint(q.Get("owner"), 10, 64)
	capitalMin, _ := strconv.Atoi(q.Get("capitalMin"))
	capitalMax, _ := strconv.Atoi(q.Get("capitalMax"))

	filter := organizations.Filter{
		OwnerID:      uint(ownerID),
		CreatedAt:    q.Get("createdAt"),
		CapitalMin:   capitalMin,
		CapitalMax:   capitalMax,
		Search:       q.Get("search"),
		TitleOrder:   q.Get("titleOrder"),
		ServiceOrder: q.Get("serviceOrder"),
		Limit:        limit,
		Page:         page,
	}

	list, err := h.orgs.FindAll(r.Context(), filter, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/organizations/{id}.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization ID"})
		return
	}

	org, err := h.orgs.FindOne(r.Context(), id, actingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// Update handles PATCH /api/v1/organizations/{id}.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization ID"})
		return
	}

	var req dto.UpdateOrganizationRequest
	var upload *attachments.Upload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart body"})
			return
		}
		capital, ok := formInt(r, "capital")
		if !ok {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Capital must be an integer"})
			return
		}
		ownerID, ok := formUint(r, "ownerId")
		if !ok {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Owner ID must be a positive integer"})
			return
		}
		req = dto.UpdateOrganizationRequest{
			Title:   formString(r, "title"),
			Service: formString(r, "service"),
			Address: formString(r, "address"),
			Capital: capital,
			OwnerID: ownerID,
			File:    formString(r, "file"),
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

	org, err := h.orgs.Update(r.Context(), id, organizations.UpdateInput{
		Title:           req.Title,
		Service:         req.Service,
		Address:         req.Address,
		Capital:         req.Capital,
		OwnerID:         req.OwnerID,
		ClearAttachment: req.ClearAttachment(),
	}, actingID, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// Delete handles DELETE /api/v1/organizations/{id}.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actingID := middleware.GetAccountID(r.Context())

	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization ID"})
		return
	}

	if err := h.orgs.Remove(r.Context(), id, actingID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Organization has been successfully removed"})
}
