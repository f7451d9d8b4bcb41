package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/db"
	"github.com/hourglasshq/hourglass/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "hourglass_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return New(database)
}

func seedOrgAndMember(t *testing.T, st *Store) (model.Organization, model.Member) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	org := model.NewOrganization(uuid.NewString(), "Test Org")
	if err := st.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("create organization: %v", err)
	}
	user := model.User{ID: uuid.NewString(), Name: "Tester", Email: uuid.NewString() + "@example.com",
		Timezone: "UTC", WeekStart: "monday", CreatedAt: now}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	member := model.Member{ID: uuid.NewString(), OrganizationID: org.ID, UserID: user.ID,
		Role: model.RoleOwner, CreatedAt: now}
	if err := st.CreateMember(ctx, member); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return org, member
}

func TestForEachEntryPaginatesInOrder(t *testing.T) {
	st := newTestStore(t)
	org, member := seedOrgAndMember(t, st)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const total = 25
	for i := 0; i < total; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		end := start.Add(30 * time.Minute)
		e := model.TimeEntry{
			ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
			Description: fmt.Sprintf("entry %d", i), Start: start, End: &end, CreatedAt: start,
		}
		if err := st.CreateTimeEntry(ctx, e); err != nil {
			t.Fatalf("create entry %d: %v", i, err)
		}
	}

	var seen []time.Time
	err := st.ForEachEntry(ctx, EntryFilter{OrganizationID: org.ID}, 10, func(e model.TimeEntry) error {
		seen = append(seen, e.Start)
		return nil
	})
	if err != nil {
		t.Fatalf("for each entry: %v", err)
	}
	if len(seen) != total {
		t.Fatalf("streamed %d entries, want %d", len(seen), total)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Before(seen[i-1]) {
			t.Fatalf("entries out of order at %d: %v < %v", i, seen[i], seen[i-1])
		}
	}
}

func TestForEachEntryPaginatesEqualStarts(t *testing.T) {
	st := newTestStore(t)
	org, member := seedOrgAndMember(t, st)
	ctx := context.Background()

	// All entries share one start timestamp, forcing the id tiebreak
	start := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	const total = 7
	for i := 0; i < total; i++ {
		e := model.TimeEntry{
			ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
			Start: start, CreatedAt: start,
		}
		if err := st.CreateTimeEntry(ctx, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	ids := map[string]bool{}
	err := st.ForEachEntry(ctx, EntryFilter{OrganizationID: org.ID}, 3, func(e model.TimeEntry) error {
		if ids[e.ID] {
			return fmt.Errorf("entry %s streamed twice", e.ID)
		}
		ids[e.ID] = true
		return nil
	})
	if err != nil {
		t.Fatalf("for each entry: %v", err)
	}
	if len(ids) != total {
		t.Fatalf("streamed %d distinct entries, want %d", len(ids), total)
	}
}

func TestStopTimeEntryOnlyStopsRunning(t *testing.T) {
	st := newTestStore(t)
	org, member := seedOrgAndMember(t, st)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e := model.TimeEntry{
		ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
		Start: start, CreatedAt: start,
	}
	if err := st.CreateTimeEntry(ctx, e); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	running, err := st.RunningEntries(ctx, org.ID, member.ID)
	if err != nil || len(running) != 1 {
		t.Fatalf("running = %v, %v", running, err)
	}

	end := start.Add(time.Hour)
	if err := st.StopTimeEntry(ctx, org.ID, e.ID, end); err != nil {
		t.Fatalf("stop: %v", err)
	}

	got, err := st.GetTimeEntry(ctx, org.ID, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.End == nil || !got.End.Equal(end) {
		t.Fatalf("end = %v, want %v", got.End, end)
	}

	// A stopped entry cannot be stopped again
	if err := st.StopTimeEntry(ctx, org.ID, e.ID, end.Add(time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second stop err = %v, want ErrNotFound", err)
	}
}

func TestEntryFilterCombinations(t *testing.T) {
	st := newTestStore(t)
	org, member := seedOrgAndMember(t, st)
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	project := model.Project{ID: uuid.NewString(), OrganizationID: org.ID, Name: "Website", Color: "#26a69a", CreatedAt: now}
	if err := st.CreateProject(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	tag := model.Tag{ID: uuid.NewString(), OrganizationID: org.ID, Name: "focus", CreatedAt: now}
	if err := st.CreateTag(ctx, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	end1 := now.Add(time.Hour)
	entries := []model.TimeEntry{
		{ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
			ProjectID: &project.ID, Start: now, End: &end1, Billable: true, Tags: []string{tag.ID}, CreatedAt: now},
		{ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
			Start: now.Add(2 * time.Hour), CreatedAt: now},
		{ID: uuid.NewString(), OrganizationID: org.ID, MemberID: member.ID, UserID: member.UserID,
			Start: now.Add(30 * time.Hour), CreatedAt: now},
	}
	for _, e := range entries {
		if err := st.CreateTimeEntry(ctx, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	listLen := func(f EntryFilter) int {
		t.Helper()
		got, err := st.ListTimeEntries(ctx, f)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return len(got)
	}

	billable := true
	if n := listLen(EntryFilter{OrganizationID: org.ID, Billable: &billable}); n != 1 {
		t.Errorf("billable filter = %d, want 1", n)
	}

	active := true
	if n := listLen(EntryFilter{OrganizationID: org.ID, Active: &active}); n != 2 {
		t.Errorf("active filter = %d, want 2", n)
	}

	if n := listLen(EntryFilter{OrganizationID: org.ID, ProjectIDs: []string{project.ID}}); n != 1 {
		t.Errorf("project filter = %d, want 1", n)
	}

	if n := listLen(EntryFilter{OrganizationID: org.ID, TagIDs: []string{tag.ID}}); n != 1 {
		t.Errorf("tag filter = %d, want 1", n)
	}

	// [Start, End) bounds the entry start
	rangeEnd := now.Add(24 * time.Hour)
	if n := listLen(EntryFilter{OrganizationID: org.ID, Start: &now, End: &rangeEnd}); n != 2 {
		t.Errorf("range filter = %d, want 2", n)
	}

	if n := listLen(EntryFilter{OrganizationID: "other-org"}); n != 0 {
		t.Errorf("foreign org filter = %d, want 0", n)
	}
}
