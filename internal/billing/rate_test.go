package billing

import (
	"testing"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
)

func intPtr(i int) *int { return &i }

func TestEffectiveRateCascade(t *testing.T) {
	org := model.Organization{BillableRate: intPtr(1000)}
	member := model.Member{BillableRate: intPtr(2000)}
	project := &model.Project{BillableRate: intPtr(3000)}
	pm := &model.ProjectMember{BillableRate: intPtr(4000)}

	cases := []struct {
		name    string
		pm      *model.ProjectMember
		project *model.Project
		member  model.Member
		org     model.Organization
		want    *int
	}{
		{"project member wins", pm, project, member, org, intPtr(4000)},
		{"project next", nil, project, member, org, intPtr(3000)},
		{"member next", nil, nil, member, org, intPtr(2000)},
		{"organization last", nil, nil, model.Member{}, org, intPtr(1000)},
		{"nothing configured", nil, nil, model.Member{}, model.Organization{}, nil},
		{"unset levels are skipped", &model.ProjectMember{}, &model.Project{}, member, org, intPtr(2000)},
	}

	for _, tc := range cases {
		got := EffectiveRate(tc.pm, tc.project, tc.member, tc.org)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("%s: got %d, want nil", tc.name, *got)
		case tc.want != nil && got == nil:
			t.Errorf("%s: got nil, want %d", tc.name, *tc.want)
		case tc.want != nil && *got != *tc.want:
			t.Errorf("%s: got %d, want %d", tc.name, *got, *tc.want)
		}
	}
}

func TestCostUsesFrozenRate(t *testing.T) {
	// An entry keeps the rate it was created with even if the cascade
	// would resolve differently now.
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	entry := model.TimeEntry{
		Billable:     true,
		BillableRate: intPtr(7200), // cents per hour
		Start:        start,
		End:          &end,
	}

	if got := entry.CostCents(end); got != 3600 {
		t.Fatalf("cost = %d, want 3600", got)
	}

	entry.Billable = false
	if got := entry.CostCents(end); got != 0 {
		t.Fatalf("non-billable cost = %d, want 0", got)
	}

	entry.Billable = true
	entry.BillableRate = nil
	if got := entry.CostCents(end); got != 0 {
		t.Fatalf("rateless cost = %d, want 0", got)
	}
}
