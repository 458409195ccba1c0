package blocks

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identifier formats.
const (
	FormatUUID    = "uuid"
	FormatCompact = "compact"
)

// IDGenerator produces fresh, unique identifiers.
type IDGenerator interface {
	NewID() string
}

// GeneratorFunc adapts a function to IDGenerator.
type GeneratorFunc func() string

// NewID implements IDGenerator.
func (f GeneratorFunc) NewID() string { return f() }

// UUIDGenerator produces random (version 4) UUIDs in canonical form.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// CompactGenerator produces random UUIDs as 32 lowercase hex digits.
type CompactGenerator struct{}

// NewID implements IDGenerator.
func (CompactGenerator) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GeneratorForFormat returns the generator for a format name. The empty
// name selects FormatUUID.
func GeneratorForFormat(format string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatUUID:
		return UUIDGenerator{}, nil
	case FormatCompact:
		return CompactGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIDFormat, format)
	}
}
