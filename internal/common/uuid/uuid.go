package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/teachcreate/internal/common/uuid UUID

// UUID produces random (version 4) identifiers in their canonical
// 8-4-4-4-12 hex form
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using the uuid package
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new random UUID. It panics if the system random source
// fails, the same way uuid.New does.
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
