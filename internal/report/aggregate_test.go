package report

import (
	"errors"
	"testing"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
)

func testEntry(start time.Time, seconds int64, projectID *string, billable bool, rate *int) model.TimeEntry {
	end := start.Add(time.Duration(seconds) * time.Second)
	return model.TimeEntry{
		ID:        start.Format(time.RFC3339Nano),
		UserID:    "user-1",
		ProjectID: projectID,
		Start:     start,
		End:       &end,
		Billable:  billable,
		BillableRate: func() *int {
			if billable {
				return rate
			}
			return nil
		}(),
	}
}

func intPtr(i int) *int { return &i }

func TestAggregateTotalsMatchBucketSums(t *testing.T) {
	projA := "proj-a"
	projB := "proj-b"
	rate := intPtr(3600) // cents per hour, so seconds == cents

	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{
		testEntry(base, 1800, &projA, true, rate),
		testEntry(base.Add(time.Hour), 600, &projA, false, nil),
		testEntry(base.Add(2*time.Hour), 900, &projB, true, rate),
		testEntry(base.Add(3*time.Hour), 300, nil, false, nil),
	}

	res, err := Aggregate(entries, Options{
		Group:    GroupProject,
		SubGroup: GroupBillable,
		Now:      base.Add(24 * time.Hour),
	}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if res.Seconds != 3600 {
		t.Fatalf("total seconds = %d, want 3600", res.Seconds)
	}
	if res.Cost != 2700 {
		t.Fatalf("total cost = %d, want 2700", res.Cost)
	}

	var bucketSeconds, bucketCost int64
	for _, b := range res.GroupedData {
		bucketSeconds += b.Seconds
		bucketCost += b.Cost

		var subSeconds, subCost int64
		for _, sb := range b.GroupedData {
			subSeconds += sb.Seconds
			subCost += sb.Cost
		}
		if subSeconds != b.Seconds || subCost != b.Cost {
			t.Fatalf("sub-bucket sums %d/%d do not match bucket %d/%d", subSeconds, subCost, b.Seconds, b.Cost)
		}
	}
	if bucketSeconds != res.Seconds || bucketCost != res.Cost {
		t.Fatalf("bucket sums %d/%d do not match totals %d/%d", bucketSeconds, bucketCost, res.Seconds, res.Cost)
	}
}

func TestAggregateRejectsSubGroupWithoutGroup(t *testing.T) {
	_, err := Aggregate(nil, Options{SubGroup: GroupProject}, Labels{})
	if !errors.Is(err, ErrSubGroupWithoutGroup) {
		t.Fatalf("err = %v, want ErrSubGroupWithoutGroup", err)
	}
}

func TestAggregateFillGapsInsertsEmptyDays(t *testing.T) {
	proj := "proj-a"
	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	entries := []model.TimeEntry{
		testEntry(first, 600, &proj, false, nil),
		testEntry(last, 1200, &proj, false, nil),
	}

	res, err := Aggregate(entries, Options{
		Group:    GroupDay,
		FillGaps: true,
		Start:    first,
		End:      last,
		Now:      last.Add(time.Hour),
	}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(res.GroupedData) != 5 {
		t.Fatalf("got %d buckets, want 5", len(res.GroupedData))
	}

	wantKeys := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	wantSeconds := []int64{600, 0, 0, 0, 1200}
	for i, b := range res.GroupedData {
		if b.Key == nil || *b.Key != wantKeys[i] {
			t.Fatalf("bucket %d key = %v, want %s", i, b.Key, wantKeys[i])
		}
		if b.Seconds != wantSeconds[i] {
			t.Fatalf("bucket %s seconds = %d, want %d", wantKeys[i], b.Seconds, wantSeconds[i])
		}
	}

	// Filled buckets must not change the totals
	if res.Seconds != 1800 {
		t.Fatalf("total seconds = %d, want 1800", res.Seconds)
	}
}

func TestAggregateFillGapsRequiresRange(t *testing.T) {
	_, err := Aggregate(nil, Options{Group: GroupDay, FillGaps: true}, Labels{})
	if !errors.Is(err, ErrRangeRequired) {
		t.Fatalf("err = %v, want ErrRangeRequired", err)
	}
}

func TestAggregateSortsEntitiesByNameWithNullLast(t *testing.T) {
	alpha := "proj-alpha"
	beta := "proj-beta"
	labels := Labels{
		Projects: map[string]ProjectLabel{
			alpha: {Name: "Alpha", Color: "#ef5350"},
			beta:  {Name: "beta", Color: "#26a69a"},
		},
	}

	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{
		testEntry(base, 100, nil, false, nil),
		testEntry(base.Add(time.Hour), 200, &beta, false, nil),
		testEntry(base.Add(2*time.Hour), 300, &alpha, false, nil),
	}

	res, err := Aggregate(entries, Options{Group: GroupProject, Now: base.Add(24 * time.Hour)}, labels)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(res.GroupedData) != 3 {
		t.Fatalf("got %d buckets, want 3", len(res.GroupedData))
	}

	// Case-insensitive name order, null bucket last
	if d := res.GroupedData[0].Description; d == nil || *d != "Alpha" {
		t.Fatalf("first bucket = %v, want Alpha", d)
	}
	if d := res.GroupedData[1].Description; d == nil || *d != "beta" {
		t.Fatalf("second bucket = %v, want beta", d)
	}
	lastBucket := res.GroupedData[2]
	if lastBucket.Key != nil {
		t.Fatalf("last bucket key = %v, want nil", *lastBucket.Key)
	}
	if d := lastBucket.Description; d == nil || *d != "No project" {
		t.Fatalf("last bucket description = %v, want No project", d)
	}

	// Project buckets carry the project color
	if c := res.GroupedData[0].Color; c == nil || *c != "#ef5350" {
		t.Fatalf("Alpha color = %v, want #ef5350", c)
	}
}

func TestAggregateBillableSortsNoBeforeYes(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{
		testEntry(base, 100, nil, true, intPtr(100)),
		testEntry(base.Add(time.Hour), 200, nil, false, nil),
	}

	res, err := Aggregate(entries, Options{Group: GroupBillable, Now: base.Add(24 * time.Hour)}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(res.GroupedData) != 2 {
		t.Fatalf("got %d buckets, want 2", len(res.GroupedData))
	}
	if d := res.GroupedData[0].Description; d == nil || *d != "No" {
		t.Fatalf("first bucket = %v, want No", d)
	}
	if d := res.GroupedData[1].Description; d == nil || *d != "Yes" {
		t.Fatalf("second bucket = %v, want Yes", d)
	}
}

func TestAggregateRunningEntryAnchorsAtNow(t *testing.T) {
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	now := start.Add(42 * time.Minute)

	entry := model.TimeEntry{
		ID:     "running",
		UserID: "user-1",
		Start:  start,
	}

	res, err := Aggregate([]model.TimeEntry{entry}, Options{Now: now}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res.Seconds != 42*60 {
		t.Fatalf("running entry seconds = %d, want %d", res.Seconds, 42*60)
	}
}
