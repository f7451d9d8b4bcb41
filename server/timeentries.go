package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/billing"
	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/labstack/echo/v4"
)

type createEntryRequest struct {
	Description string   `json:"description"`
	ProjectID   *string  `json:"project_id"`
	TaskID      *string  `json:"task_id"`
	Billable    bool     `json:"billable"`
	Start       string   `json:"start"`
	End         *string  `json:"end"`
	Tags        []string `json:"tags"`
}

// handleCreateTimeEntry creates an entry for the acting member. The
// billable rate is resolved through the cascade once, here, and frozen
// into the stored row.
func (s *Server) handleCreateTimeEntry(c echo.Context) error {
	var req createEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	start := time.Now().UTC()
	if req.Start != "" {
		t, err := time.Parse(timestampFormat, req.Start)
		if err != nil {
			return validationError(c, "start", "must be a UTC timestamp like 2024-01-01T00:00:00Z")
		}
		start = t
	}

	var end *time.Time
	if req.End != nil {
		t, err := time.Parse(timestampFormat, *req.End)
		if err != nil {
			return validationError(c, "end", "must be a UTC timestamp like 2024-01-01T00:00:00Z")
		}
		if t.Before(start) {
			return validationError(c, "end", "must not be before start")
		}
		end = &t
	}

	ctx := c.Request().Context()
	org := c.Get("organization").(model.Organization)
	member := c.Get("member").(model.Member)

	var clientID *string
	if req.ProjectID != nil {
		project, err := s.store.GetProject(ctx, org.ID, *req.ProjectID)
		if errors.Is(err, store.ErrNotFound) {
			return validationError(c, "project_id", "project does not belong to this organization")
		}
		if err != nil {
			c.Logger().Error("project lookup failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		clientID = project.ClientID
	}

	var rate *int
	if req.Billable {
		resolved, err := billing.ResolveForEntry(ctx, s.store, org, member, req.ProjectID)
		if err != nil {
			c.Logger().Error("rate resolution failed: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		rate = resolved
	}

	// One running entry per member is a soft invariant: violations are
	// logged, never rejected.
	if end == nil {
		running, err := s.store.RunningEntries(ctx, org.ID, member.ID)
		if err == nil && len(running) > 0 {
			logger.Warn("member already has a running time entry",
				logger.F("organization", org.ID),
				logger.F("member", member.ID),
				logger.F("running", len(running)))
		}
	}

	entry := model.TimeEntry{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		MemberID:       member.ID,
		UserID:         member.UserID,
		ProjectID:      req.ProjectID,
		TaskID:         req.TaskID,
		ClientID:       clientID,
		Description:    req.Description,
		Start:          start,
		End:            end,
		Billable:       req.Billable,
		BillableRate:   rate,
		Tags:           req.Tags,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateTimeEntry(ctx, entry); err != nil {
		c.Logger().Error("entry create failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusCreated, entry)
}

// handleStopTimeEntry sets the end timestamp of a running entry.
func (s *Server) handleStopTimeEntry(c echo.Context) error {
	ctx := c.Request().Context()
	org := c.Get("organization").(model.Organization)
	id := c.Param("id")

	if err := s.store.StopTimeEntry(ctx, org.ID, id, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no running time entry with that id"})
		}
		c.Logger().Error("entry stop failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	entry, err := s.store.GetTimeEntry(ctx, org.ID, id)
	if err != nil {
		c.Logger().Error("entry reload failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, entry)
}
