// Package selector implements the filtering and selection pipeline that turns
// a bucket listing plus user-supplied criteria into a concrete download set.
//
// Selection is a pure, side-effect-free transformation: the listing and
// criteria are immutable inputs, and identical inputs always yield identical
// output ordering and totals.
package selector

import (
	"sort"
	"strings"
	"time"

	"s3fetch/internal/errors"
)

// Object represents one remote file in a bucket listing snapshot.
type Object struct {
	// Key is the object key (path) within the bucket, unique per listing
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified (UTC)
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string
}

// Mode determines which time window the criteria describe.
type Mode string

const (
	// ModeLastNDays selects objects modified within the last N days
	ModeLastNDays Mode = "last-n-days"

	// ModeExactDate selects objects modified on a specific calendar day
	ModeExactDate Mode = "exact-date"
)

// Criteria holds the user-supplied selection parameters.
// Exactly one of Days/Date is meaningful, determined by Mode; the other is
// ignored.
type Criteria struct {
	// Mode selects between the last-N-days window and an exact calendar date
	Mode Mode

	// Days is the window length, required when Mode is ModeLastNDays
	Days int

	// Date is the calendar day (UTC), required when Mode is ModeExactDate
	Date time.Time

	// NamePattern optionally restricts selection to keys containing this
	// substring (case-sensitive)
	NamePattern string
}

// Validate checks the criteria for the selected mode.
// Days must be positive under ModeLastNDays and Date must be set under
// ModeExactDate; anything else is rejected as ErrInvalidCriteria.
func (c Criteria) Validate() error {
	switch c.Mode {
	case ModeLastNDays:
		if c.Days <= 0 {
			return errors.NewError("select", errors.ErrInvalidCriteria).
				WithMessage("days must be a positive integer")
		}
	case ModeExactDate:
		if c.Date.IsZero() {
			return errors.NewError("select", errors.ErrInvalidCriteria).
				WithMessage("date is required for exact-date mode")
		}
	default:
		return errors.NewError("select", errors.ErrInvalidCriteria).
			WithMessage("unknown criteria mode " + string(c.Mode))
	}
	return nil
}

// Selection is the result of applying criteria to a listing snapshot.
type Selection struct {
	// Objects are the selected objects, ordered by LastModified ascending
	// with ties broken by Key ascending
	Objects []Object

	// TotalBytes is the sum of Size over the selected objects
	TotalBytes int64
}

// Select applies the criteria to a listing snapshot and returns the ordered
// download set plus the aggregate byte total.
//
// The reference instant is now for ModeLastNDays and the midnight-to-midnight
// UTC bounds of the criteria date for ModeExactDate. The lower bound is
// inclusive in both modes; the exact-date upper bound is the exclusive start
// of the next day. The input slice is never mutated, and an empty result is
// valid, not an error.
func Select(objects []Object, c Criteria, now time.Time) (Selection, error) {
	if err := c.Validate(); err != nil {
		return Selection{}, err
	}

	var start, end time.Time
	switch c.Mode {
	case ModeLastNDays:
		start = now.Add(-time.Duration(c.Days) * 24 * time.Hour)
	case ModeExactDate:
		d := c.Date.UTC()
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
	}

	selection := Selection{}
	for _, obj := range objects {
		if obj.LastModified.Before(start) {
			continue
		}
		if !end.IsZero() && !obj.LastModified.Before(end) {
			continue
		}
		if c.NamePattern != "" && !strings.Contains(obj.Key, c.NamePattern) {
			continue
		}
		selection.Objects = append(selection.Objects, obj)
		selection.TotalBytes += obj.Size
	}

	// Deterministic ordering for reproducible download sequencing.
	sort.Slice(selection.Objects, func(i, j int) bool {
		a, b := selection.Objects[i], selection.Objects[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.Before(b.LastModified)
		}
		return a.Key < b.Key
	})

	return selection, nil
}
