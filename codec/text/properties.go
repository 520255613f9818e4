// Package text implements the separator-delimited textual row codec
// (spec §4.5.1): typed escaping per field, CR-LF row termination, an
// optional header row, and a compression collaborator for the output
// stream.
package text

import (
	"time"

	"github.com/lychee-technology/rowbase"
)

// NewlineMode selects the row terminator the encoder writes. The decoder
// accepts CRLF or LF regardless of mode; a lone CR is not a line break.
type NewlineMode int

const (
	NewlineCRLF NewlineMode = iota
	NewlineLF
)

// Properties configures a single textual codec run. Construct with
// NewProperties (applies sane defaults) then adjust fields directly;
// Validate is called automatically by WriteTable/WriteRows/RowToString and
// ReadTable; RowFromString does not call it.
type Properties struct {
	Separator         rune
	StringMarker      rune
	HasStringMarker   bool
	NewlineMode       NewlineMode
	Compression       rowbase.CompressionKind
	DateTimeFormat    string
	Culture           string
	SaveDefaultValues bool
	NoHeader          bool
}

// NewProperties returns the codec's documented defaults: comma separator,
// double-quote string marker, CRLF newlines, no compression, RFC3339Nano
// date-time format, en-US culture, default values saved, header emitted.
func NewProperties() *Properties {
	return &Properties{
		Separator:         ',',
		StringMarker:      '"',
		HasStringMarker:   true,
		NewlineMode:       NewlineCRLF,
		Compression:       rowbase.CompressionNone,
		DateTimeFormat:    time.RFC3339Nano,
		Culture:           "en-US",
		SaveDefaultValues: true,
		NoHeader:          false,
	}
}

// Validate rejects configuration combinations the spec calls out as
// inconsistent: a separator/marker collision, or a zero separator.
func (p *Properties) Validate() error {
	if p.Separator == 0 {
		return rowbase.NewInvalidPropertiesError("textual codec: separator must be set")
	}
	if p.HasStringMarker && p.StringMarker == p.Separator {
		return rowbase.NewInvalidPropertiesError("textual codec: separator and stringMarker must differ")
	}
	if p.DateTimeFormat == "" {
		return rowbase.NewInvalidPropertiesError("textual codec: dateTimeFormat must be set")
	}
	return nil
}

func (p *Properties) newline() string {
	if p.NewlineMode == NewlineLF {
		return "\n"
	}
	return "\r\n"
}
