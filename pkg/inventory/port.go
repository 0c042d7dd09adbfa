package inventory

import (
	"strconv"
	"strings"
)

// PortType selects the female (socket) or male (plug) side of an item.
type PortType string

// Port types.
const (
	Female PortType = "female"
	Male   PortType = "male"
)

const (
	femalePrefix = "Female_"
	malePrefix   = "Male_"
)

// Valid reports whether pt is a known port type.
func (pt PortType) Valid() bool { return pt == Female || pt == Male }

// FemalePort returns the name of the i-th female port (1-based).
func FemalePort(i int) string { return femalePrefix + strconv.Itoa(i) }

// MalePort returns the name of the i-th male port (1-based).
func MalePort(i int) string { return malePrefix + strconv.Itoa(i) }

// ParsePort splits a port name into its type and 1-based index.
func ParsePort(name string) (PortType, int, bool) {
	var pt PortType
	var rest string
	switch {
	case strings.HasPrefix(name, femalePrefix):
		pt, rest = Female, strings.TrimPrefix(name, femalePrefix)
	case strings.HasPrefix(name, malePrefix):
		pt, rest = Male, strings.TrimPrefix(name, malePrefix)
	default:
		return "", 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || strconv.Itoa(n) != rest {
		return "", 0, false
	}
	return pt, n, true
}
