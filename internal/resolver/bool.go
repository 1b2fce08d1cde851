package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBool = errors.New("invalid boolean value")

// ParseBool accepts y/yes/t/true/on/1 and n/no/f/false/off/0, case-insensitive.
// Anything else is an error, never a default.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidBool, value)
}
