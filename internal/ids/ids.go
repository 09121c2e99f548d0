// Package ids mints identifiers for annotation objects, editing sessions and
// stored exports.
package ids

import (
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.jetify.com/typeid/v2"
)

const (
	PrefixRect   = "rect"
	PrefixCircle = "circle"
	PrefixLine   = "line"
	PrefixArrow  = "arrow"
	PrefixText   = "text"
)

// New returns a typeid string such as "rect_01h455vb4pex5vsknk084sn02q".
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

// Validate checks that id parses as a typeid carrying expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// NewSessionID returns a lexically sortable session identifier.
func NewSessionID() string { return ulid.Make().String() }

// NewExportID returns a lexically sortable export identifier.
func NewExportID() string { return ulid.Make().String() }

// ValidateExportID checks that id is a ulid as minted by NewExportID.
func ValidateExportID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("invalid export id %q: %w", id, err)
	}
	return nil
}
