package order

import (
	"fmt"
	"strings"
	"time"

	"marketplace/internal/pkg/errs"

	"github.com/oklog/ulid/v2"
)

const numberPrefix = "ORD-"

// Number is the human readable order number: "ORD-" followed by a ULID.
// ULIDs sort by creation time and carry 80 bits of randomness, so numbers are
// unique across processes without coordination.
type Number string

// NewNumber generates a number stamped with now. The default entropy source
// is monotonic within a millisecond and safe for concurrent use.
func NewNumber(now time.Time) Number {
	return Number(numberPrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String())
}

func ParseNumber(s string) (Number, error) {
	raw, ok := strings.CutPrefix(s, numberPrefix)
	if !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("orderNumber", fmt.Errorf("%q lacks the %s prefix", s, numberPrefix))
	}
	if _, err := ulid.ParseStrict(raw); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("orderNumber", err)
	}
	return Number(s), nil
}

func (n Number) String() string {
	return string(n)
}

// Time returns the creation instant encoded in the number.
func (n Number) Time() (time.Time, error) {
	id, err := ulid.ParseStrict(strings.TrimPrefix(string(n), numberPrefix))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
