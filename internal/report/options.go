package report

import (
	"errors"
	"time"
)

// Validation errors surfaced to API callers as field-level errors.
var (
	ErrSubGroupWithoutGroup = errors.New("sub_group requires group to be set")
	ErrRangeRequired        = errors.New("fill_gaps_in_time_groups requires start and end")
)

// Options controls one aggregation run. Group and SubGroup are optional;
// without a group all entries fall into a single implicit bucket.
type Options struct {
	Group    Group
	SubGroup Group

	// FillGaps inserts zero-valued buckets for every empty time bucket
	// between Start and End when Group is a time dimension.
	FillGaps bool

	// Start/End are the filter's date range, used for gap filling.
	Start time.Time
	End   time.Time

	// Location and WeekStart define day/week bucket boundaries.
	Location  *time.Location
	WeekStart time.Weekday

	// Now anchors the duration of running entries. Captured once per
	// evaluation so one response is internally consistent.
	Now time.Time
}

// Validate checks option consistency before any query runs.
func (o *Options) Validate() error {
	if o.SubGroup != "" && o.Group == "" {
		return ErrSubGroupWithoutGroup
	}
	if o.FillGaps && o.Group.IsTimeDimension() && (o.Start.IsZero() || o.End.IsZero()) {
		return ErrRangeRequired
	}
	return nil
}

func (o *Options) normalize() {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
}
