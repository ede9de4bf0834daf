package dto

import "github.com/hugh/orgbook/internal/api/validation"

type SignUpRequest struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignUpRequest) Validate() map[string]string {
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
	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}
	return errors
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.RefreshToken == "" {
		errors["refresh_token"] = "Refresh token is required"
	}
	return errors
}
