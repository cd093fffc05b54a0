// Package export writes rollout plans as JSON, YAML, CSV, terminal text or a
// printable HTML document. Writers only read the plan.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kilianp07/rolloutplan/core/rollout"
)

// Format names an export encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
	Text Format = "text"
	HTML Format = "html"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists every supported format.
func Formats() []Format { return []Format{JSON, YAML, CSV, Text, HTML} }

// ParseFormat resolves a format name; "yml" and "txt" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, CSV, Text, HTML:
		return f, nil
	case "yml":
		return YAML, nil
	case "txt":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type used when serving f over HTTP.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	case CSV:
		return "text/csv; charset=utf-8"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension of f without the dot.
func (f Format) Extension() string {
	if f == Text {
		return "txt"
	}
	return string(f)
}

// Document is a plan together with its heading and per-week date ranges.
type Document struct {
	CompanyName     string             `json:"company_name" yaml:"company_name"`
	ProjectName     string             `json:"project_name" yaml:"project_name"`
	ShowCompanyName bool               `json:"show_company_name" yaml:"show_company_name"`
	Weeks           []rollout.WeekData `json:"weeks" yaml:"weeks"`
	DateRanges      map[int]string     `json:"date_ranges,omitempty" yaml:"date_ranges,omitempty"`
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case JSON:
		return WriteJSON(w, doc)
	case YAML:
		return WriteYAML(w, doc)
	case CSV:
		return WriteCSV(w, doc.Weeks)
	case Text:
		return WriteText(w, doc)
	case HTML:
		return WriteHTML(w, doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds the download name for a company, e.g.
// "RIANA_GROUP_Rollout_Plan.pdf".
func FileName(company, ext string) string {
	return unsafeName.ReplaceAllString(company, "_") + "_Rollout_Plan." + ext
}
