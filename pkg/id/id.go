package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. Screen run IDs sort by creation time, which
// keeps "runs list" ordered without an extra index.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID whose timestamp is t.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t.UTC()), ulid.DefaultEntropy()).String()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
