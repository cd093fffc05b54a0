// Package palette defines the fixed set of colours used to paint rollout
// plans. The hex values match the legacy document format and must not change.
package palette

import (
	"fmt"
	"strings"
)

// Color is one entry of the fixed palette. The zero value is White.
type Color int

const (
	White Color = iota
	Physical1
	Physical2
	Software
	Training
	DryRunHQ
	DryRunStd
	GoLive
	Monitoring
	Handover
)

type entry struct {
	name string
	hex  string
}

var entries = [...]entry{
	White:      {"WHITE", "#FFFFFF"},
	Physical1:  {"PHYSICAL_1", "#F4B084"},
	Physical2:  {"PHYSICAL_2", "#9BBB59"},
	Software:   {"SOFTWARE", "#E09E9E"},
	Training:   {"TRAINING", "#ED7D31"},
	DryRunHQ:   {"DRY_RUN_HQ", "#A52A2A"},
	DryRunStd:  {"DRY_RUN_STD", "#9BC2E6"},
	GoLive:     {"GO_LIVE", "#C00000"},
	Monitoring: {"MONITORING", "#0070C0"},
	Handover:   {"HANDOVER", "#00B050"},
}

// All returns every palette colour in declaration order.
func All() []Color {
	out := make([]Color, len(entries))
	for i := range entries {
		out[i] = Color(i)
	}
	return out
}

// Valid reports whether c is a member of the palette.
func (c Color) Valid() bool { return c >= 0 && int(c) < len(entries) }

// Hex returns the legacy hex value, e.g. "#F4B084".
func (c Color) Hex() string {
	if !c.Valid() {
		return ""
	}
	return entries[c].hex
}

// Name returns the constant name, e.g. "PHYSICAL_1".
func (c Color) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return entries[c].name
}

func (c Color) String() string { return c.Hex() }

// Parse resolves a hex value or a constant name (case-insensitive).
func Parse(s string) (Color, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v != "" && v[0] != '#' && len(v) == 6 && isHex(v) {
		v = "#" + v
	}
	for i, e := range entries {
		if e.hex == v || e.name == v {
			return Color(i), nil
		}
	}
	return White, fmt.Errorf("unknown palette colour %q", s)
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// MarshalText encodes the colour as its hex value.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid palette colour %d", int(c))
	}
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts anything Parse accepts.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
