package inventory

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spookydecs/circuitry/pkg/errors"
)

// MaxCapacity is the largest port count an item may declare. Larger values
// are malformed and count as 0.
const MaxCapacity = 256

// Capacity is a port count. It unmarshals leniently: malformed input yields 0.
type Capacity int

// Int returns the capacity as an int in [0, MaxCapacity]. Values outside that
// range return 0.
func (c Capacity) Int() int {
	if c < 0 || c > MaxCapacity {
		return 0
	}
	return int(c)
}

// UnmarshalJSON accepts numbers, numeric strings and null. It never returns an
// error so that one bad inventory row cannot fail a whole listing.
func (c *Capacity) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		*c = 0
		return nil
	}
	n, _ := ParseCapacity(v)
	*c = Capacity(n)
	return nil
}

// ParseCapacity converts a raw capacity value to a port count.
// The returned count is always usable; err is a MALFORMED_CAPACITY error
// describing why the value was replaced with 0.
func ParseCapacity(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity is missing")
	case int:
		return nonNegative(int64(t))
	case int32:
		return nonNegative(int64(t))
	case int64:
		return nonNegative(t)
	case Capacity:
		return nonNegative(int64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		return parseCapacityString(t.String())
	case string:
		return parseCapacityString(t)
	default:
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity has unsupported type %T", v)
	}
}

func parseCapacityString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity is empty")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return nonNegative(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %q is not a number", s)
	}
	return fromFloat(f)
}

func fromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %v is not finite", f)
	}
	if f != math.Trunc(f) {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %v is not a whole number", f)
	}
	if f < 0 {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %v is negative", f)
	}
	if f > MaxCapacity {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %v exceeds %d", f, MaxCapacity)
	}
	return int(f), nil
}

func nonNegative(n int64) (int, error) {
	if n < 0 {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %d is negative", n)
	}
	if n > MaxCapacity {
		return 0, errors.New(errors.ErrCodeMalformedCapacity, "capacity %d exceeds %d", n, MaxCapacity)
	}
	return int(n), nil
}
