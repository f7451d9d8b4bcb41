package report

import (
	"fmt"
	"time"
)

// Group is an aggregation dimension. Time dimensions bucket entries by
// their start timestamp in the requesting user's timezone; entity
// dimensions bucket by foreign key.
type Group string

const (
	GroupDay      Group = "day"
	GroupWeek     Group = "week"
	GroupMonth    Group = "month"
	GroupYear     Group = "year"
	GroupUser     Group = "user"
	GroupProject  Group = "project"
	GroupTask     Group = "task"
	GroupClient   Group = "client"
	GroupBillable Group = "billable"
)

// ParseGroup validates a group query-parameter value.
func ParseGroup(s string) (Group, error) {
	switch Group(s) {
	case GroupDay, GroupWeek, GroupMonth, GroupYear, GroupUser, GroupProject, GroupTask, GroupClient, GroupBillable:
		return Group(s), nil
	default:
		return "", fmt.Errorf("invalid group %q", s)
	}
}

// IsTimeDimension reports whether the group buckets by calendar periods.
func (g Group) IsTimeDimension() bool {
	switch g {
	case GroupDay, GroupWeek, GroupMonth, GroupYear:
		return true
	}
	return false
}

// ParseWeekStart maps a lower-case weekday name to a time.Weekday,
// defaulting to Monday.
func ParseWeekStart(s string) time.Weekday {
	switch s {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

// truncate returns the bucket boundary containing t for a time dimension,
// evaluated in loc. Week boundaries respect the configured week start.
func (g Group) truncate(t time.Time, loc *time.Location, weekStart time.Weekday) time.Time {
	lt := t.In(loc)
	switch g {
	case GroupDay:
		return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	case GroupWeek:
		day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		return day.AddDate(0, 0, -offset)
	case GroupMonth:
		return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
	case GroupYear:
		return time.Date(lt.Year(), 1, 1, 0, 0, 0, 0, loc)
	}
	return lt
}

// next advances a bucket boundary to the following bucket.
func (g Group) next(t time.Time) time.Time {
	switch g {
	case GroupDay:
		return t.AddDate(0, 0, 1)
	case GroupWeek:
		return t.AddDate(0, 0, 7)
	case GroupMonth:
		return t.AddDate(0, 1, 0)
	case GroupYear:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// formatKey renders a bucket boundary as the output key for the dimension.
func (g Group) formatKey(t time.Time) string {
	switch g {
	case GroupDay, GroupWeek:
		return t.Format("2006-01-02")
	case GroupMonth:
		return t.Format("2006-01")
	case GroupYear:
		return t.Format("2006")
	}
	return ""
}
