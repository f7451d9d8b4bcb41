package report

import (
	"testing"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
)

func TestWeekBucketsRespectWeekStart(t *testing.T) {
	// Wednesday 2024-01-03
	start := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{testEntry(start, 600, nil, false, nil)}

	cases := []struct {
		weekStart time.Weekday
		wantKey   string
	}{
		{time.Monday, "2024-01-01"},
		{time.Sunday, "2023-12-31"},
		{time.Wednesday, "2024-01-03"},
		{time.Thursday, "2023-12-28"},
	}

	for _, tc := range cases {
		res, err := Aggregate(entries, Options{
			Group:     GroupWeek,
			WeekStart: tc.weekStart,
			Now:       start.Add(24 * time.Hour),
		}, Labels{})
		if err != nil {
			t.Fatalf("aggregate (%v): %v", tc.weekStart, err)
		}
		if len(res.GroupedData) != 1 {
			t.Fatalf("got %d buckets, want 1", len(res.GroupedData))
		}
		if key := res.GroupedData[0].Key; key == nil || *key != tc.wantKey {
			t.Fatalf("week start %v: key = %v, want %s", tc.weekStart, key, tc.wantKey)
		}
	}
}

func TestDayBucketsUseRequestTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 23:30 UTC on Jan 1 is already Jan 2 in Berlin
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	entries := []model.TimeEntry{testEntry(start, 600, nil, false, nil)}

	res, err := Aggregate(entries, Options{
		Group:    GroupDay,
		Location: berlin,
		Now:      start.Add(24 * time.Hour),
	}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if key := res.GroupedData[0].Key; key == nil || *key != "2024-01-02" {
		t.Fatalf("key = %v, want 2024-01-02", key)
	}

	// The same entry stays on Jan 1 in UTC
	res, err = Aggregate(entries, Options{
		Group: GroupDay,
		Now:   start.Add(24 * time.Hour),
	}, Labels{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if key := res.GroupedData[0].Key; key == nil || *key != "2024-01-01" {
		t.Fatalf("key = %v, want 2024-01-01", key)
	}
}

func TestMonthAndYearKeys(t *testing.T) {
	start := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{testEntry(start, 600, nil, false, nil)}

	res, err := Aggregate(entries, Options{Group: GroupMonth, Now: start.Add(time.Hour)}, Labels{})
	if err != nil {
		t.Fatalf("aggregate month: %v", err)
	}
	if key := res.GroupedData[0].Key; key == nil || *key != "2024-07" {
		t.Fatalf("month key = %v, want 2024-07", key)
	}

	res, err = Aggregate(entries, Options{Group: GroupYear, Now: start.Add(time.Hour)}, Labels{})
	if err != nil {
		t.Fatalf("aggregate year: %v", err)
	}
	if key := res.GroupedData[0].Key; key == nil || *key != "2024" {
		t.Fatalf("year key = %v, want 2024", key)
	}
}

func TestParseGroupRejectsUnknownDimension(t *testing.T) {
	if _, err := ParseGroup("weekday"); err == nil {
		t.Fatal("expected error for unknown group")
	}
	g, err := ParseGroup("project")
	if err != nil || g != GroupProject {
		t.Fatalf("ParseGroup(project) = %v, %v", g, err)
	}
}
