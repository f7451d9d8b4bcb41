package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/db"
	"github.com/hourglasshq/hourglass/internal/export"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "hourglass_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return store.New(database)
}

func newTestOrg(t *testing.T, st *store.Store, name string) model.Organization {
	t.Helper()
	org := model.NewOrganization(uuid.NewString(), name)
	if err := st.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return org
}

func mustCount(t *testing.T, st *store.Store, table, orgID string) int {
	t.Helper()
	n, err := st.CountRows(context.Background(), table, orgID)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip member: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write zip member: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestHarvestImportCreatesPlaceholderIdentities(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Harvest Org")
	svc := NewService(st)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"Date,Client,Project,Task,Notes,Hours,Billable?,First Name,Last Name",
		"2024-01-15,Big Company,Website,Design,Homepage draft,1.5,Yes,Peter,Tester",
		"2024-01-16,Big Company,App,,Bug fixes,2,No,Peter,Tester",
	}, "\n")

	report, err := svc.Import(ctx, org, "harvest_time_entries", []byte(csvData), time.UTC)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if report.TimeEntriesCreated != 2 {
		t.Errorf("time entries = %d, want 2", report.TimeEntriesCreated)
	}
	if report.UsersCreated != 1 {
		t.Errorf("users = %d, want 1", report.UsersCreated)
	}
	if report.ClientsCreated != 1 {
		t.Errorf("clients = %d, want 1", report.ClientsCreated)
	}
	if report.ProjectsCreated != 2 {
		t.Errorf("projects = %d, want 2", report.ProjectsCreated)
	}
	if report.TasksCreated != 1 {
		t.Errorf("tasks = %d, want 1", report.TasksCreated)
	}
	if report.TagsCreated != 0 {
		t.Errorf("tags = %d, want 0", report.TagsCreated)
	}

	// Harvest has no email column, so the user resolves to a stable
	// synthetic address and cannot log in.
	user, err := st.GetUserByEmail(ctx, "peter.tester@harvest.import")
	if err != nil {
		t.Fatalf("placeholder user: %v", err)
	}
	if user.Name != "Peter Tester" {
		t.Errorf("user name = %q, want Peter Tester", user.Name)
	}
	if !user.IsPlaceholder() {
		t.Error("expected user without password hash")
	}
	member, err := st.GetMemberByUser(ctx, org.ID, user.ID)
	if err != nil {
		t.Fatalf("placeholder member: %v", err)
	}
	if member.Role != model.RolePlaceholder {
		t.Errorf("member role = %q, want %q", member.Role, model.RolePlaceholder)
	}

	// Decimal hours become a concrete end timestamp
	entries, err := st.ListTimeEntries(ctx, store.EntryFilter{OrganizationID: org.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	for _, e := range entries {
		if e.End == nil {
			t.Fatalf("entry %q has no end", e.Description)
		}
		if !e.IsImported {
			t.Errorf("entry %q not flagged as imported", e.Description)
		}
		if e.Description == "Homepage draft" {
			if got := e.End.Sub(e.Start); got != 90*time.Minute {
				t.Errorf("duration = %v, want 90m", got)
			}
			if !e.Billable {
				t.Error("Homepage draft should be billable")
			}
		}
	}
}

func TestTogglReimportCreatesEntitiesOnce(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Toggl Org")
	svc := NewService(st)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"User,Email,Client,Project,Task,Description,Billable,Start date,Start time,End date,End time,Tags,Duration",
		`Anna,anna@example.com,Acme,Website,Design,Mockups,Yes,2024-01-10,09:00:00,2024-01-10,10:30:00,"design,ui",01:30:00`,
		"Anna,anna@example.com,Acme,Website,,Standup,No,2024-01-10,11:00:00,2024-01-10,11:15:00,,00:15:00",
	}, "\n")

	first, err := svc.Import(ctx, org, "toggl_time_entries", []byte(csvData), time.UTC)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.TimeEntriesCreated != 2 || first.UsersCreated != 1 || first.ClientsCreated != 1 ||
		first.ProjectsCreated != 1 || first.TasksCreated != 1 || first.TagsCreated != 2 {
		t.Fatalf("first report = %+v", first)
	}

	// Entities are matched by natural key on the second run; time entries
	// are created again.
	second, err := svc.Import(ctx, org, "toggl_time_entries", []byte(csvData), time.UTC)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.TimeEntriesCreated != 2 {
		t.Errorf("second run time entries = %d, want 2", second.TimeEntriesCreated)
	}
	if second.UsersCreated != 0 || second.ClientsCreated != 0 || second.ProjectsCreated != 0 ||
		second.TasksCreated != 0 || second.TagsCreated != 0 {
		t.Errorf("second run created entities: %+v", second)
	}

	if n := mustCount(t, st, "time_entries", org.ID); n != 4 {
		t.Errorf("stored entries = %d, want 4", n)
	}
	if n := mustCount(t, st, "projects", org.ID); n != 1 {
		t.Errorf("stored projects = %d, want 1", n)
	}
	if n := mustCount(t, st, "tags", org.ID); n != 2 {
		t.Errorf("stored tags = %d, want 2", n)
	}
}

func TestSameTaskNameInTwoProjectsStaysDistinct(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Task Scope Org")
	svc := NewService(st)

	csvData := strings.Join([]string{
		"User,Email,Client,Project,Task,Description,Billable,Start date,Start time,End date,End time,Tags,Duration",
		"Anna,anna@example.com,,Website,Research,,No,2024-01-10,09:00:00,2024-01-10,10:00:00,,01:00:00",
		"Anna,anna@example.com,,App,Research,,No,2024-01-10,10:00:00,2024-01-10,11:00:00,,01:00:00",
	}, "\n")

	report, err := svc.Import(context.Background(), org, "toggl_time_entries", []byte(csvData), time.UTC)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.TasksCreated != 2 {
		t.Errorf("tasks = %d, want 2 (one per project)", report.TasksCreated)
	}
}

func TestMissingRequiredColumnFailsWithoutWrites(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Broken CSV Org")
	svc := NewService(st)
	ctx := context.Background()

	csvData := "User,Project,Start date,Start time\nAnna,Website,2024-01-10,09:00:00"
	_, err := svc.Import(ctx, org, "toggl_time_entries", []byte(csvData), time.UTC)
	if err == nil {
		t.Fatal("expected error for missing Email column")
	}

	var impErr *Error
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if !strings.Contains(impErr.Error(), `"Email"`) {
		t.Errorf("error %q does not name the missing column", impErr.Error())
	}

	if n := mustCount(t, st, "time_entries", org.ID); n != 0 {
		t.Errorf("entries written despite failure: %d", n)
	}
}

func TestZipImporterRejectsNonArchiveData(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Bad Archive Org")
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.Import(ctx, org, "toggl_data_importer", []byte("this is not a zip file"), time.UTC)
	if err == nil {
		t.Fatal("expected error for non-zip payload")
	}
	var impErr *Error
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if !strings.Contains(strings.ToLower(impErr.Error()), "zip") {
		t.Errorf("error %q does not mention the archive format", impErr.Error())
	}

	for _, table := range []string{"clients", "projects", "time_entries"} {
		if n := mustCount(t, st, table, org.ID); n != 0 {
			t.Errorf("%s written despite failure: %d", table, n)
		}
	}
}

func TestConflictingProjectColorsRollBackTheRun(t *testing.T) {
	st := newTestStore(t)
	org := newTestOrg(t, st, "Conflict Org")
	svc := NewService(st)
	ctx := context.Background()

	archive := buildZip(t, map[string]string{
		"clients.csv": "Name\nAcme",
		"projects.csv": strings.Join([]string{
			"Name,Client,Color",
			"Website,Acme,#ff0000",
			"Website,Acme,#00ff00",
		}, "\n"),
	})

	_, err := svc.Import(ctx, org, "toggl_data_importer", archive, time.UTC)
	if err == nil {
		t.Fatal("expected error for conflicting project colors")
	}
	if !strings.Contains(err.Error(), "conflicting colors") {
		t.Errorf("error = %q", err.Error())
	}

	// The client row was processed before the conflict; the rollback
	// must take it with it.
	if n := mustCount(t, st, "clients", org.ID); n != 0 {
		t.Errorf("clients committed despite failed run: %d", n)
	}
}

func TestNativeArchiveRoundTripPreservesSpecialCharacters(t *testing.T) {
	st := newTestStore(t)
	source := newTestOrg(t, st, "Source Org")
	target := newTestOrg(t, st, "Target Org")
	svc := NewService(st)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	specialDesc := `\ 🔥 Special "chars" !@#$%^&*()`
	projectName := `Cust "omer" Portal 🔥`

	// Seed the source organization directly through the store
	user := model.User{ID: uuid.NewString(), Name: "Mia", Email: "mia@example.com", Timezone: "UTC", WeekStart: "monday", CreatedAt: now}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	member := model.Member{ID: uuid.NewString(), OrganizationID: source.ID, UserID: user.ID, Role: model.RoleOwner, CreatedAt: now}
	if err := st.CreateMember(ctx, member); err != nil {
		t.Fatalf("create member: %v", err)
	}
	client := model.Client{ID: uuid.NewString(), OrganizationID: source.ID, Name: "Großkunde & Co", CreatedAt: now}
	if err := st.CreateClient(ctx, client); err != nil {
		t.Fatalf("create client: %v", err)
	}
	project := model.Project{ID: uuid.NewString(), OrganizationID: source.ID, ClientID: &client.ID, Name: projectName, Color: "#26a69a", CreatedAt: now}
	if err := st.CreateProject(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	task := model.Task{ID: uuid.NewString(), OrganizationID: source.ID, ProjectID: project.ID, Name: "Review, round 2", CreatedAt: now}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	tag := model.Tag{ID: uuid.NewString(), OrganizationID: source.ID, Name: "urgent 🔥", CreatedAt: now}
	if err := st.CreateTag(ctx, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	end := now.Add(45 * time.Minute)
	entries := []model.TimeEntry{
		{
			ID: uuid.NewString(), OrganizationID: source.ID, MemberID: member.ID, UserID: user.ID,
			ProjectID: &project.ID, TaskID: &task.ID, ClientID: &client.ID,
			Description: specialDesc, Start: now, End: &end, Billable: true,
			Tags: []string{tag.ID}, CreatedAt: now,
		},
		{
			ID: uuid.NewString(), OrganizationID: source.ID, MemberID: member.ID, UserID: user.ID,
			Description: "plain entry", Start: now.Add(time.Hour), CreatedAt: now,
		},
	}
	for _, e := range entries {
		if err := st.CreateTimeEntry(ctx, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := export.WriteArchive(ctx, st, source.ID, &buf); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	report, err := svc.Import(ctx, target, "hourglass", buf.Bytes(), time.UTC)
	if err != nil {
		t.Fatalf("import archive: %v", err)
	}
	if report.ClientsCreated != 1 || report.ProjectsCreated != 1 || report.TasksCreated != 1 ||
		report.TagsCreated != 1 || report.TimeEntriesCreated != 2 {
		t.Fatalf("report = %+v", report)
	}
	// The user already exists globally, only the membership is new
	if report.UsersCreated != 0 {
		t.Errorf("users = %d, want 0", report.UsersCreated)
	}
	if _, err := st.GetMemberByUser(ctx, target.ID, user.ID); err != nil {
		t.Errorf("membership in target org: %v", err)
	}

	imported, err := st.ListTimeEntries(ctx, store.EntryFilter{OrganizationID: target.ID})
	if err != nil {
		t.Fatalf("list imported entries: %v", err)
	}
	var found *model.TimeEntry
	for i := range imported {
		if imported[i].Description == specialDesc {
			found = &imported[i]
		}
	}
	if found == nil {
		t.Fatalf("special description did not survive the round trip: %v", imported)
	}
	if found.ProjectID == nil {
		t.Fatal("imported entry lost its project")
	}
	targetProject, err := st.FindProjectByName(ctx, target.ID, projectName)
	if err != nil {
		t.Fatalf("imported project: %v", err)
	}
	if *found.ProjectID != targetProject.ID {
		t.Error("entry does not reference the imported project")
	}
	if found.ClientID == nil {
		t.Error("imported entry lost its client")
	}
	if !found.Start.Equal(now) {
		t.Errorf("start = %v, want %v", found.Start, now)
	}
	if found.End == nil || !found.End.Equal(end) {
		t.Errorf("end = %v, want %v", found.End, end)
	}
	if len(found.Tags) != 1 {
		t.Errorf("tags = %v, want one id", found.Tags)
	}
}

func TestCreateRejectsUnknownImportType(t *testing.T) {
	st := newTestStore(t)
	if _, err := Create("jira_worklog", st); err == nil {
		t.Fatal("expected error for unknown type")
	}

	keys := Keys()
	if len(keys) != 10 {
		t.Fatalf("registry has %d keys: %v", len(keys), keys)
	}
	for _, key := range keys {
		if _, err := Create(key, st); err != nil {
			t.Errorf("Create(%s): %v", key, err)
		}
	}
}

func TestGenericImportParsesWallClockInTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	st := newTestStore(t)
	org := newTestOrg(t, st, "Generic Org")
	svc := NewService(st)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"user,email,client,project,task,description,billable,start,end,tags",
		"Lee,lee@example.com,,Research,,Reading,1,2024-03-01 09:00:00,2024-03-01 10:00:00,deep|focus",
		"Lee,lee@example.com,,,,Running entry,no,2024-03-01T12:00:00Z,,",
	}, "\n")

	report, err := svc.Import(ctx, org, "generic_time_entries", []byte(csvData), ny)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.TimeEntriesCreated != 2 || report.TagsCreated != 2 {
		t.Fatalf("report = %+v", report)
	}

	entries, err := st.ListTimeEntries(ctx, store.EntryFilter{OrganizationID: org.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	for _, e := range entries {
		switch e.Description {
		case "Reading":
			// 09:00 New York wall clock is 14:00 UTC in March (EST)
			want := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
			if !e.Start.Equal(want) {
				t.Errorf("start = %v, want %v", e.Start, want)
			}
			if !e.Billable {
				t.Error("billable flag lost")
			}
			if len(e.Tags) != 2 {
				t.Errorf("tags = %v, want 2 ids", e.Tags)
			}
		case "Running entry":
			// RFC 3339 input carries its own zone, the import timezone
			// does not apply
			want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
			if !e.Start.Equal(want) {
				t.Errorf("start = %v, want %v", e.Start, want)
			}
			if e.End != nil {
				t.Error("running entry gained an end")
			}
		}
	}
}
