package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a byte count that may be written as a plain TOML integer, a
// quoted number ("0x1000000" works), or a quoted human-readable value
// with an SI or binary unit such as "512MiB" or "1.5GB".
type Size uint64

var sizeUnits = map[string]uint64{
	"KB": 1000, "kB": 1000,
	"MB": 1000 * 1000,
	"GB": 1000 * 1000 * 1000,
	"TB": 1000 * 1000 * 1000 * 1000,

	"KiB": 1 << 10, "MiB": 1 << 20, "GiB": 1 << 30, "TiB": 1 << 40,

	"K": 1 << 10, "k": 1 << 10,
	"M": 1 << 20, "m": 1 << 20,
	"G": 1 << 30, "g": 1 << 30,
}

// ParseSize parses the quoted form of a Size.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse size %q: %w", s, strconv.ErrSyntax)
	}

	// Everything up to the first character that is neither a digit nor a
	// decimal point is the number; the rest is the unit.
	unitIndex := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})

	if unitIndex < 0 {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse size %q: %w", s, err)
		}

		return Size(v), nil
	}

	// A leading 0x makes the whole string a base-prefixed integer.
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("parse size %q: %w", s, err)
		}

		return Size(v), nil
	}

	num, unit := s[:unitIndex], strings.TrimSpace(s[unitIndex:])

	mult, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("parse size %q: unknown unit %q: %w", s, unit, strconv.ErrSyntax)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}

	return Size(value*float64(mult) + 0.5), nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *Size) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case int64:
		if t < 0 {
			return fmt.Errorf("size must not be negative: %d", t)
		}

		*s = Size(t)

		return nil
	case string:
		parsed, err := ParseSize(t)
		if err != nil {
			return err
		}

		*s = parsed

		return nil
	default:
		return fmt.Errorf("size must be an integer or a string, got %T", v)
	}
}
