package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/hourglasshq/hourglass/internal/importer"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/labstack/echo/v4"
)

type importRequest struct {
	Type string `json:"type"`
	Data string `json:"data"` // base64-encoded CSV or ZIP payload
}

type createdCount struct {
	Created int `json:"created"`
}

type importResponse struct {
	Report struct {
		Clients     createdCount `json:"clients"`
		Projects    createdCount `json:"projects"`
		Tasks       createdCount `json:"tasks"`
		TimeEntries createdCount `json:"time_entries"`
		Tags        createdCount `json:"tags"`
		Users       createdCount `json:"users"`
	} `json:"report"`
}

// handleImport decodes the payload and runs the requested importer against
// the organization. Import failures surface as 400 with a stable message.
func (s *Server) handleImport(c echo.Context) error {
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Type == "" {
		return validationError(c, "type", "import type required")
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return validationError(c, "data", "must be base64 encoded")
	}

	user := c.Get("user").(model.User)
	tz := time.UTC
	if loc, err := time.LoadLocation(user.Timezone); err == nil {
		tz = loc
	}

	org := c.Get("organization").(model.Organization)
	rep, err := s.imports.Import(c.Request().Context(), org, req.Type, data, tz)
	if err != nil {
		var impErr *importer.Error
		if errors.As(err, &impErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": impErr.Error()})
		}
		c.Logger().Error("import failed: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	var resp importResponse
	resp.Report.Clients.Created = rep.ClientsCreated
	resp.Report.Projects.Created = rep.ProjectsCreated
	resp.Report.Tasks.Created = rep.TasksCreated
	resp.Report.TimeEntries.Created = rep.TimeEntriesCreated
	resp.Report.Tags.Created = rep.TagsCreated
	resp.Report.Users.Created = rep.UsersCreated
	return c.JSON(http.StatusOK, resp)
}
