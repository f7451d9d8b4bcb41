package server

import (
	"net/http"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/report"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/labstack/echo/v4"
)

// timestampFormat is the query-parameter timestamp layout (UTC).
const timestampFormat = "2006-01-02T15:04:05Z"

// handleReport runs an aggregation over the organization's time entries
// and returns the grouped tree.
func (s *Server) handleReport(c echo.Context) error {
	filter, opts, ok := s.parseReportQuery(c)
	if !ok {
		return nil // validation response already written
	}

	ctx := c.Request().Context()
	entries, err := s.store.ListTimeEntries(ctx, filter)
	if err != nil {
		c.Logger().Error("report query failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	labels, err := report.LoadLabels(ctx, s.store, filter.OrganizationID)
	if err != nil {
		c.Logger().Error("label load failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	result, err := report.Aggregate(entries, opts, labels)
	if err != nil {
		return validationError(c, "group", err.Error())
	}

	if !s.canSeeBillableAmounts(c) {
		zeroCosts(result)
	}

	return c.JSON(http.StatusOK, result)
}

// handleReportExport renders the aggregation as csv or pdf.
func (s *Server) handleReportExport(c echo.Context) error {
	format := c.QueryParam("format")
	switch format {
	case "csv", "pdf":
	default:
		return validationError(c, "format", "unsupported format; supported formats are csv and pdf")
	}

	filter, opts, ok := s.parseReportQuery(c)
	if !ok {
		return nil // validation response already written
	}

	ctx := c.Request().Context()
	entries, err := s.store.ListTimeEntries(ctx, filter)
	if err != nil {
		c.Logger().Error("report query failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	labels, err := report.LoadLabels(ctx, s.store, filter.OrganizationID)
	if err != nil {
		c.Logger().Error("label load failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	result, err := report.Aggregate(entries, opts, labels)
	if err != nil {
		return validationError(c, "group", err.Error())
	}

	if !s.canSeeBillableAmounts(c) {
		zeroCosts(result)
	}

	org := c.Get("organization").(model.Organization)
	switch format {
	case "csv":
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		return report.WriteCSV(c.Response(), result, opts, org.Currency)
	default:
		data, err := report.WritePDF(result, opts, org.Name, org.Currency)
		if err != nil {
			c.Logger().Error("pdf render failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return c.Blob(http.StatusOK, "application/pdf", data)
	}
}

// parseReportQuery validates query parameters into a store filter and
// aggregation options. On failure it writes the 400 response itself and
// returns ok=false; the caller must not touch the response again.
func (s *Server) parseReportQuery(c echo.Context) (store.EntryFilter, report.Options, bool) {
	org := c.Get("organization").(model.Organization)
	user := c.Get("user").(model.User)

	fail := func(field, msg string) (store.EntryFilter, report.Options, bool) {
		_ = validationError(c, field, msg)
		return store.EntryFilter{}, report.Options{}, false
	}

	filter := store.EntryFilter{
		OrganizationID: org.ID,
		MemberIDs:      queryList(c, "member_ids"),
		ProjectIDs:     queryList(c, "project_ids"),
		ClientIDs:      queryList(c, "client_ids"),
		TagIDs:         queryList(c, "tag_ids"),
		TaskIDs:        queryList(c, "task_ids"),
		UserID:         c.QueryParam("user_id"),
	}
	if id := c.QueryParam("member_id"); id != "" {
		filter.MemberIDs = append(filter.MemberIDs, id)
	}

	opts := report.Options{
		Location:  time.UTC,
		WeekStart: report.ParseWeekStart(user.WeekStart),
		Now:       time.Now().UTC(),
	}
	if loc, err := time.LoadLocation(user.Timezone); err == nil {
		opts.Location = loc
	}

	for _, bound := range []struct {
		param string
		opt   *time.Time
	}{
		{"start", &opts.Start},
		{"after", &opts.Start},
		{"end", &opts.End},
		{"before", &opts.End},
	} {
		raw := c.QueryParam(bound.param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(timestampFormat, raw)
		if err != nil {
			return fail(bound.param, "must be a UTC timestamp like 2024-01-01T00:00:00Z")
		}
		*bound.opt = t
	}
	if !opts.Start.IsZero() {
		start := opts.Start
		filter.Start = &start
	}
	if !opts.End.IsZero() {
		end := opts.End
		filter.End = &end
	}

	for _, flag := range []struct {
		param string
		dest  **bool
	}{
		{"active", &filter.Active},
		{"billable", &filter.Billable},
	} {
		switch c.QueryParam(flag.param) {
		case "":
		case "true":
			v := true
			*flag.dest = &v
		case "false":
			v := false
			*flag.dest = &v
		default:
			return fail(flag.param, "must be true or false")
		}
	}

	if raw := c.QueryParam("group"); raw != "" {
		g, err := report.ParseGroup(raw)
		if err != nil {
			return fail("group", err.Error())
		}
		opts.Group = g
	}
	if raw := c.QueryParam("sub_group"); raw != "" {
		g, err := report.ParseGroup(raw)
		if err != nil {
			return fail("sub_group", err.Error())
		}
		opts.SubGroup = g
	}
	opts.FillGaps = c.QueryParam("fill_gaps_in_time_groups") == "true"

	if err := opts.Validate(); err != nil {
		return fail("sub_group", err.Error())
	}

	return filter, opts, true
}

// queryList collects repeated array parameters, accepting both the plain
// and the bracketed key spelling.
func queryList(c echo.Context, name string) []string {
	params := c.QueryParams()
	values := append([]string{}, params[name]...)
	values = append(values, params[name+"[]"]...)
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// canSeeBillableAmounts gates cost visibility: employees only see amounts
// when the organization allows it. The aggregation engine itself never
// enforces this.
func (s *Server) canSeeBillableAmounts(c echo.Context) bool {
	org := c.Get("organization").(model.Organization)
	member := c.Get("member").(model.Member)
	if member.Role == model.RoleEmployee || member.Role == model.RolePlaceholder {
		return org.EmployeesCanSeeRates
	}
	return true
}

func zeroCosts(res *report.Result) {
	res.Cost = 0
	var walk func(buckets []*report.Bucket)
	walk = func(buckets []*report.Bucket) {
		for _, b := range buckets {
			b.Cost = 0
			walk(b.GroupedData)
		}
	}
	walk(res.GroupedData)
}
