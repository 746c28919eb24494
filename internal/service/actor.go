package service

import (
	"strings"

	"github.com/google/uuid"

	"hotelms/internal/model"
)

const bcryptCost = 10

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   model.Role
}

// IsAdmin reports whether the caller is an admin.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
