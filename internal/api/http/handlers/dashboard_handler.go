package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
)

// DashboardHandler serves the incident table and keyword tabs.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboard}
}

// Incidents GET /api/dashboard/incidents?search=&severity=&page=.
func (h *DashboardHandler) Incidents(c *fiber.Ctx) error {
	page, err := h.service.ActiveIncidents(c.UserContext(), service.IncidentFilter{
		Search:   c.Query("search"),
		Severity: domain.Severity(strings.ToUpper(c.Query("severity"))),
		Page:     queryInt(c, "page", 1),
	})
	if err != nil {
		return err
	}
	items := make([]dto.IncidentResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, incidentResponse(&page.Items[i], ""))
	}
	return c.JSON(fiber.Map{"data": dto.IncidentPageResponse{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}})
}

// Buckets GET /api/dashboard/buckets.
func (h *DashboardHandler) Buckets(c *fiber.Ctx) error {
	buckets, err := h.service.Buckets(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.BucketResponse, 0, len(buckets))
	for _, b := range buckets {
		rows := make([]dto.IncidentResponse, 0, len(b.Rows))
		for i := range b.Rows {
			rows = append(rows, incidentResponse(&b.Rows[i].IncidentRow, b.Rows[i].Tone))
		}
		out = append(out, dto.BucketResponse{Key: string(b.Key), Count: len(rows), Rows: rows})
	}
	return c.JSON(fiber.Map{"data": out})
}

func incidentResponse(row *service.IncidentRow, tone service.Tone) dto.IncidentResponse {
	view := service.ComplaintView{
		Complaint:    row.Complaint,
		Downtime:     row.Downtime,
		CommentCount: len(row.Complaint.Comments),
	}
	return dto.IncidentResponse{
		ComplaintResponse: complaintResponse(&view, ""),
		LocationName:      row.LocationName,
		FLM:               row.FLM,
		SLM:               row.SLM,
		Tone:              string(tone),
	}
}
