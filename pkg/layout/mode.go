package layout

import (
	"strings"

	"github.com/matzehuels/gridkit/pkg/errors"
)

// Mode selects a width distribution strategy.
type Mode string

const (
	FitData        Mode = "fitData"
	FitDataFill    Mode = "fitDataFill"
	FitDataTable   Mode = "fitDataTable"
	FitDataStretch Mode = "fitDataStretch"
	FitColumns     Mode = "fitColumns"
)

// Modes lists every supported mode.
var Modes = []Mode{FitData, FitDataFill, FitDataTable, FitDataStretch, FitColumns}

// ParseMode accepts the canonical names and their kebab-case forms
// ("fit-columns"), case-insensitively.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	for _, m := range Modes {
		if strings.ToLower(string(m)) == key {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown layout mode %q", s)
}

// Measures reports whether the mode sizes columns by their content.
func (m Mode) Measures() bool { return m != FitColumns }

// String returns the canonical mode name.
func (m Mode) String() string { return string(m) }
