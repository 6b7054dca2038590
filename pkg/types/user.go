package types

import (
	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
)

// User is the full profile record, kept separate from the minimal session
// token so sensitive/large data never rides in the auth slice.
type User struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	Addresses []Address      `json:"addresses"`
}
