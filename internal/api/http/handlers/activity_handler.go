package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// ActivityHandler serves the activity log.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List GET /api/activity?action=&search=&from=&to=.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	filter := service.ActivityFilter{
		Action: domain.ActivityAction(strings.ToUpper(c.Query("action"))),
		Search: c.Query("search"),
	}
	details := map[string]any{}
	filter.From = queryTime(c, details, "from")
	filter.To = queryTime(c, details, "to")
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid filter", details)
	}

	entries, err := h.activity.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.ActivityLog{}
	}
	return c.JSON(fiber.Map{"data": entries})
}

// View POST /api/activity/view records that the caller opened a console page.
func (h *ActivityHandler) View(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.ActivityViewRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	page := strings.TrimSpace(req.Page)
	h.activity.Record(c.UserContext(), actor, domain.ActionView, page, "User opened "+page+" page")
	return c.SendStatus(fiber.StatusNoContent)
}

func queryTime(c *fiber.Ctx, details map[string]any, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if key == "to" {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	t, err := dto.ParseTimestamp(raw)
	if err != nil {
		details[key] = "must be a date or timestamp"
		return nil
	}
	return &t
}
