// Package joincode produces the short codes participants type to find a
// live game session.
package joincode

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/teachcreate/internal/common/uuid"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/KirkDiggler/teachcreate/internal/joincode Generator

// Length is the number of characters in a join code
const Length = 6

var codePattern = regexp.MustCompile(`^[0-9A-F]{6}$`)

// Generator produces join codes
type Generator interface {
	// Generate returns a new code. Codes are random, not unique; the
	// session store is responsible for rejecting duplicates.
	Generate() string
}

// Config for the join code generator
type Config struct {
	// Optional UUID source, defaults to random v4 UUIDs
	UUIDGenerator uuid.UUID
}

type generator struct {
	uuid uuid.UUID
}

// New creates a join code generator
func New(cfg *Config) *generator {
	var source uuid.UUID = uuid.New()
	if cfg != nil && cfg.UUIDGenerator != nil {
		source = cfg.UUIDGenerator
	}

	return &generator{
		uuid: source,
	}
}

// Generate takes the first six hex digits of a fresh UUID and upper-cases them
func (g *generator) Generate() string {
	hex := strings.ReplaceAll(g.uuid.NewUUID(), "-", "")
	if len(hex) > Length {
		hex = hex[:Length]
	}
	return strings.ToUpper(hex)
}

// Normalize trims and upper-cases user input so codes can be typed in any case
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is a well-formed join code
func Valid(code string) bool {
	return codePattern.MatchString(code)
}
