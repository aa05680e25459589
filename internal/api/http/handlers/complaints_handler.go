package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const terminalLookupLimit = 10

// ComplaintsHandler serves the complaint list, form and discussion thread.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	views, err := h.service.List(c.UserContext(), actor, c.Query("search"))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(views))
	for i := range views {
		items = append(items, complaintResponse(&views[i], ""))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	details := map[string]any{}
	trxAt := parseField(details, "waktu_trx", req.TransactionAt)
	receivedAt := parseField(details, "waktu_aduan", req.ReceivedAt)
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}

	view, err := h.service.Create(c.UserContext(), actor, service.ComplaintCreateInput{
		Customer:      req.Customer,
		TerminalID:    req.TerminalID,
		TransactionAt: *trxAt,
		ReceivedAt:    *receivedAt,
		ComplaintType: req.ComplaintType,
		Severity:      domain.Severity(req.Severity),
		Verification:  domain.Verification(req.Verification),
		Status:        domain.ComplaintStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintResponse(view, actor.ID)})
}

// Thread GET /api/complaints/:id opens the discussion and marks it read.
func (h *ComplaintsHandler) Thread(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.OpenThread(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(view, actor.ID)})
}

// Update PUT /api/complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	details := map[string]any{}
	var trxAt, receivedAt *time.Time
	if req.TransactionAt != "" {
		trxAt = parseField(details, "waktu_trx", req.TransactionAt)
	}
	if req.ReceivedAt != "" {
		receivedAt = parseField(details, "waktu_aduan", req.ReceivedAt)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}

	view, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.ComplaintUpdateInput{
		Customer:      req.Customer,
		TerminalID:    req.TerminalID,
		TransactionAt: trxAt,
		ReceivedAt:    receivedAt,
		ComplaintType: req.ComplaintType,
		Severity:      domain.Severity(req.Severity),
		Verification:  domain.Verification(req.Verification),
		Status:        domain.ComplaintStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(view, actor.ID)})
}

// AddComment POST /api/complaints/:id/comments.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AppendComment(c.UserContext(), actor, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment, actor.ID)})
}

// Terminals GET /api/complaints/terminals?q= powers the terminal type-ahead.
func (h *ComplaintsHandler) Terminals(c *fiber.Ctx) error {
	locations, err := h.service.SearchTerminals(c.UserContext(), c.Query("q"), queryInt(c, "limit", terminalLookupLimit))
	if err != nil {
		return err
	}
	items := make([]dto.TerminalOption, 0, len(locations))
	for _, l := range locations {
		items = append(items, dto.TerminalOption{TerminalID: l.TerminalID, Name: l.Name, Address: l.Address})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseField(details map[string]any, field, value string) *time.Time {
	t, err := dto.ParseTimestamp(value)
	if err != nil {
		details[field] = "must be a timestamp such as 2025-03-10T08:00"
		return nil
	}
	return &t
}

// complaintResponse maps a view. Comments are included when viewerID is set.
func complaintResponse(v *service.ComplaintView, viewerID string) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:            v.ID,
		TicketNumber:  v.TicketNumber,
		Customer:      v.Customer,
		TerminalID:    v.TerminalID,
		TransactionAt: v.TransactionAt,
		ReceivedAt:    v.ReceivedAt,
		ComplaintType: v.ComplaintType,
		Severity:      v.Severity,
		Verification:  v.Verification,
		Status:        v.Status,
		Downtime:      v.Downtime,
		UnreadCount:   v.UnreadCount,
		CommentCount:  v.CommentCount,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	if viewerID != "" {
		resp.Comments = make([]dto.CommentResponse, 0, len(v.Comments))
		for i := range v.Comments {
			resp.Comments = append(resp.Comments, commentResponse(&v.Comments[i], viewerID))
		}
	}
	return resp
}

func commentResponse(cm *domain.Comment, viewerID string) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         cm.ID,
		UserID:     cm.AuthorID,
		UserName:   cm.AuthorName,
		UserRole:   cm.AuthorRole,
		UserAvatar: cm.AuthorAvatar,
		Text:       cm.Text,
		Timestamp:  cm.CreatedAt,
		IsOwn:      cm.AuthorID == viewerID,
	}
}
