package handler

import (
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"max=50"`
	Phone    string `json:"phone"    validate:"max=20"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type profileRequest struct {
	Email *string `json:"email"`
	Name  *string `json:"name"  validate:"omitempty,max=50"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type forgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Clients ---

type createClientRequest struct {
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName"  validate:"required,max=100"`
	Email     string   `json:"email"     validate:"required,email"`
	Phone     string   `json:"phone"     validate:"max=30"`
	Address   string   `json:"address"   validate:"max=300"`
	Company   string   `json:"company"   validate:"max=150"`
	Notes     string   `json:"notes"     validate:"max=2000"`
	Status    string   `json:"status"    validate:"omitempty,oneof=prospect active inactive customer"`
	Priority  string   `json:"priority"  validate:"omitempty,oneof=low medium high"`
	Tags      []string `json:"tags"      validate:"max=20"`
}

type updateClientRequest struct {
	OwnerID   *string   `json:"ownerId"`
	FirstName *string   `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string   `json:"lastName"  validate:"omitempty,max=100"`
	Email     *string   `json:"email"     validate:"omitempty,email"`
	Phone     *string   `json:"phone"     validate:"omitempty,max=30"`
	Address   *string   `json:"address"   validate:"omitempty,max=300"`
	Company   *string   `json:"company"   validate:"omitempty,max=150"`
	Notes     *string   `json:"notes"     validate:"omitempty,max=2000"`
	Status    *string   `json:"status"    validate:"omitempty,oneof=prospect active inactive customer"`
	Priority  *string   `json:"priority"  validate:"omitempty,oneof=low medium high"`
	Tags      *[]string `json:"tags"      validate:"omitempty,max=20"`
}

type clientResponse struct {
	Client *domain.Client `json:"client"`
}

type clientListResponse struct {
	Results int              `json:"results"`
	Clients []*domain.Client `json:"clients"`
}

// --- Admin ---

type updateUserRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Name     *string `json:"name"     validate:"omitempty,max=50"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type userListResponse struct {
	Results int            `json:"results"`
	Users   []*domain.User `json:"users"`
}
