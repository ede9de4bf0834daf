package dto

import "github.com/hugh/orgbook/internal/api/validation"

type CreateOrganizationRequest struct {
	Title   string `json:"title"`
	Service string `json:"service"`
	Address string `json:"address"`
	Capital int    `json:"capital"`
	OwnerID uint   `json:"ownerId,omitempty"`
}

func (r CreateOrganizationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidTitle(r.Title) {
		errors["title"] = "Title must be 3-50 characters: letters, numbers and spaces"
	}
	if r.Service == "" || len(r.Service) > 30 {
		errors["service"] = "Service is required, at most 30 characters"
	}
	if r.Address == "" {
		errors["address"] = "Address is required"
	}
	if r.Capital <= 0 {
		errors["capital"] = "Capital must be a positive integer"
	}
	return errors
}

type UpdateOrganizationRequest struct {
	Title   *string `json:"title,omitempty"`
	Service *string `json:"service,omitempty"`
	Address *string `json:"address,omitempty"`
	Capital *int    `json:"capital,omitempty"`
	OwnerID *uint   `json:"ownerId,omitempty"`
	// File set to the string "null" clears the attachment.
	File *string `json:"file,omitempty"`
}

func (r UpdateOrganizationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil && !validation.IsValidTitle(*r.Title) {
		errors["title"] = "Title must be 3-50 characters: letters, numbers and spaces"
	}
	if r.Service != nil && (*r.Service == "" || len(*r.Service) > 30) {
		errors["service"] = "Service must be 1-30 characters"
	}
	if r.Address != nil && *r.Address == "" {
		errors["address"] = "Address must not be empty"
	}
	if r.Capital != nil && *r.Capital <= 0 {
		errors["capital"] = "Capital must be a positive integer"
	}
	if r.File != nil && *r.File != "null" {
		errors["file"] = `File must be the string "null"`
	}
	return errors
}

func (r UpdateOrganizationRequest) ClearAttachment() bool {
	return r.File != nil && *r.File == "null"
}
