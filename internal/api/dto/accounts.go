package dto

import (
	"github.com/hugh/orgbook/internal/api/validation"
	"github.com/hugh/orgbook/internal/roles"
)

type CreateAccountRequest struct {
	Handle   string     `json:"handle"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     roles.Role `json:"role"`
}

func (r CreateAccountRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidHandle(r.Handle) {
		errors["handle"] = "Handle must be 3-20 characters: letters, numbers and underscores"
	}
	if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Valid email is required"
	}
	if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if !r.Role.AssignableAtCreate() {
		errors["role"] = "Role must be USER or ADMIN"
	}
	return errors
}

// UpdateAccountRequest is a partial update. The role field is carried only so
// the registry can reject attempts to change it.
type UpdateAccountRequest struct {
	Handle      *string     `json:"handle,omitempty"`
	Email       *string     `json:"email,omitempty"`
	Password    *string     `json:"password,omitempty"`
	OldPassword *string     `json:"oldPassword,omitempty"`
	Role        *roles.Role `json:"role,omitempty"`
	// File set to the string "null" clears the attachment.
	File *string `json:"file,omitempty"`
}

func (r UpdateAccountRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Handle != nil && !validation.IsValidHandle(*r.Handle) {
		errors["handle"] = "Handle must be 3-20 characters: letters, numbers and underscores"
	}
	if r.Email != nil && !validation.IsValidEmail(*r.Email) {
		errors["email"] = "Valid email is required"
	}
	if r.Password != nil {
		if ok, msg := validation.IsValidPassword(*r.Password); !ok {
			errors["password"] = msg
		}
	}
	if r.File != nil && *r.File != "null" {
		errors["file"] = `File must be the string "null"`
	}
	return errors
}

// ClearAttachment reports whether the payload asks for attachment removal.
func (r UpdateAccountRequest) ClearAttachment() bool {
	return r.File != nil && *r.File == "null"
}
