package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordLength = 72

var validate = validator.New()

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(verr *domain.ValidationError, field, email string) {
	if email == "" {
		verr.Add(field, field+" is required")
		return
	}
	if validate.Var(email, "email") != nil {
		verr.Add(field, field+" must be a valid email address")
	}
}

func checkRequired(verr *domain.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, field+" is required")
	}
}

func checkMaxLen(verr *domain.ValidationError, field, value string, max int) {
	if len([]rune(value)) > max {
		verr.Add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

func checkPassword(verr *domain.ValidationError, field, password string, min int) {
	switch {
	case len(password) < min:
		verr.Add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	case len(password) > maxPasswordLength:
		verr.Add(field, fmt.Sprintf("%s must be at most %d characters", field, maxPasswordLength))
	}
}

// cleanTags trims tags and drops empty and repeated ones, preserving order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
