package report

import (
	"sort"
	"strings"

	"github.com/hourglasshq/hourglass/internal/model"
)

// Bucket is one key's worth of aggregated entries. Key is nil for the
// "no project" / "no client" / "no task" bucket of entity dimensions.
type Bucket struct {
	Key         *string   `json:"key"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	Seconds     int64     `json:"seconds"`
	Cost        int64     `json:"cost"`
	GroupedData []*Bucket `json:"grouped_data"`
}

// Result is the aggregation output tree. Seconds and Cost are totals over
// the whole filtered set; the sum over all leaf buckets equals them.
type Result struct {
	Seconds     int64     `json:"seconds"`
	Cost        int64     `json:"cost"`
	GroupedData []*Bucket `json:"grouped_data"`
}

// nullKey is the map sentinel for entries without the grouped entity.
const nullKey = "\x00"

// Aggregate groups the filtered entries along up to two dimensions,
// summing duration seconds and billable cost (cents) per bucket.
func Aggregate(entries []model.TimeEntry, opts Options, labels Labels) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.normalize()

	res := &Result{GroupedData: []*Bucket{}}

	buckets := map[string]*Bucket{}
	subBuckets := map[string]map[string]*Bucket{}

	for _, e := range entries {
		secs := e.DurationSeconds(opts.Now)
		cost := e.CostCents(opts.Now)
		res.Seconds += secs
		res.Cost += cost

		if opts.Group == "" {
			continue
		}

		key := bucketKey(&e, opts.Group, &opts)
		b, ok := buckets[key]
		if !ok {
			b = newBucket(key, opts.Group, labels)
			buckets[key] = b
			subBuckets[key] = map[string]*Bucket{}
			res.GroupedData = append(res.GroupedData, b)
		}
		b.Seconds += secs
		b.Cost += cost

		if opts.SubGroup == "" {
			continue
		}

		subKey := bucketKey(&e, opts.SubGroup, &opts)
		sb, ok := subBuckets[key][subKey]
		if !ok {
			sb = newBucket(subKey, opts.SubGroup, labels)
			subBuckets[key][subKey] = sb
			b.GroupedData = append(b.GroupedData, sb)
		}
		sb.Seconds += secs
		sb.Cost += cost
	}

	if opts.FillGaps && opts.Group.IsTimeDimension() {
		fillGaps(res, buckets, &opts)
	}

	sortBuckets(res.GroupedData, opts.Group)
	for _, b := range res.GroupedData {
		sortBuckets(b.GroupedData, opts.SubGroup)
	}

	return res, nil
}

// bucketKey extracts the grouping key of an entry for one dimension.
func bucketKey(e *model.TimeEntry, g Group, opts *Options) string {
	if g.IsTimeDimension() {
		return g.formatKey(g.truncate(e.Start, opts.Location, opts.WeekStart))
	}

	switch g {
	case GroupUser:
		return e.UserID
	case GroupProject:
		if e.ProjectID == nil {
			return nullKey
		}
		return *e.ProjectID
	case GroupTask:
		if e.TaskID == nil {
			return nullKey
		}
		return *e.TaskID
	case GroupClient:
		if e.ClientID == nil {
			return nullKey
		}
		return *e.ClientID
	case GroupBillable:
		if e.Billable {
			return "true"
		}
		return "false"
	}
	return nullKey
}

func newBucket(key string, g Group, labels Labels) *Bucket {
	b := &Bucket{GroupedData: []*Bucket{}}
	if key != nullKey {
		k := key
		b.Key = &k
	}
	labels.apply(b, g)
	return b
}

// fillGaps inserts zero-valued buckets for every empty time bucket between
// the filter's start and end, inclusive.
func fillGaps(res *Result, buckets map[string]*Bucket, opts *Options) {
	g := opts.Group
	last := g.truncate(opts.End, opts.Location, opts.WeekStart)
	for t := g.truncate(opts.Start, opts.Location, opts.WeekStart); !t.After(last); t = g.next(t) {
		key := g.formatKey(t)
		if _, ok := buckets[key]; ok {
			continue
		}
		b := newBucket(key, g, Labels{})
		buckets[key] = b
		res.GroupedData = append(res.GroupedData, b)
	}
}

// sortBuckets orders time dimensions chronologically and entity dimensions
// by description, case-insensitive ascending, with the null bucket last.
// The billable dimension sorts "No" before "Yes".
func sortBuckets(buckets []*Bucket, g Group) {
	if g == "" {
		return
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if g.IsTimeDimension() || g == GroupBillable {
			return keyOf(a) < keyOf(b)
		}
		if (a.Key == nil) != (b.Key == nil) {
			return b.Key == nil
		}
		da, db := strings.ToLower(descOf(a)), strings.ToLower(descOf(b))
		if da != db {
			return da < db
		}
		return keyOf(a) < keyOf(b)
	})
}

func keyOf(b *Bucket) string {
	if b.Key == nil {
		return ""
	}
	return *b.Key
}

func descOf(b *Bucket) string {
	if b.Description == nil {
		return ""
	}
	return *b.Description
}
