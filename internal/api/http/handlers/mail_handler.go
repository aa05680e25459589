package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
)

// MailHandler exposes the internal mailbox.
type MailHandler struct {
	mail *service.MailService
}

// NewMailHandler constructs handler.
func NewMailHandler(mail *service.MailService) *MailHandler {
	return &MailHandler{mail: mail}
}

// Folder GET /api/mail?folder=inbox|sent|drafts|deleted.
func (h *MailHandler) Folder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	views, err := h.mail.Folder(c.UserContext(), actor, service.MailFolder(c.Query("folder", string(service.FolderInbox))))
	if err != nil {
		return err
	}
	items := make([]dto.MailResponse, 0, len(views))
	for i := range views {
		items = append(items, mailResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Counts GET /api/mail/counts.
func (h *MailHandler) Counts(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	counts, err := h.mail.Counts(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MailCountsResponse{UnreadInbox: counts.UnreadInbox, Drafts: counts.Drafts}})
}

// Get GET /api/mail/:id.
func (h *MailHandler) Get(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	view, err := h.mail.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mailResponse(view)})
}

// Send POST /api/mail.
func (h *MailHandler) Send(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.MailRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	view, err := h.mail.Send(c.UserContext(), actor, mailInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": mailResponse(view)})
}

// SaveDraft POST /api/mail/drafts.
func (h *MailHandler) SaveDraft(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.MailRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	view, err := h.mail.SaveDraft(c.UserContext(), actor, mailInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mailResponse(view)})
}

// Delete DELETE /api/mail/:id moves the mail to the caller's trash.
func (h *MailHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.mail.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore POST /api/mail/:id/restore.
func (h *MailHandler) Restore(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.mail.Restore(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkRead PUT /api/mail/:id/read.
func (h *MailHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	req := dto.MailReadRequest{Read: true}
	if len(c.Body()) > 0 {
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
	}
	if err := h.mail.MarkRead(c.UserContext(), actor, c.Params("id"), req.Read); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleStar POST /api/mail/:id/star.
func (h *MailHandler) ToggleStar(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	starred, err := h.mail.ToggleStar(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"starred": starred}})
}

func mailInput(req dto.MailRequest) service.MailInput {
	return service.MailInput{
		DraftID:      req.DraftID,
		RecipientIDs: req.RecipientIDs,
		CCIDs:        req.CCIDs,
		Subject:      req.Subject,
		Content:      req.Content,
		Attachments:  req.Attachments,
	}
}

func mailResponse(v *service.MailView) dto.MailResponse {
	return dto.MailResponse{
		ID:           v.ID,
		SenderID:     v.SenderID,
		SenderName:   v.SenderName,
		SenderEmail:  v.SenderEmail,
		SenderAvatar: v.SenderAvatar,
		Recipients:   nonNilParties(v.Recipients),
		CC:           nonNilParties(v.CC),
		Subject:      v.Subject,
		Content:      v.Content,
		ContentHTML:  v.ContentHTML,
		Attachments:  v.Attachments,
		IsDraft:      v.IsDraft,
		Read:         v.Read,
		Starred:      v.Starred,
		Timestamp:    v.Timestamp,
	}
}

func nonNilParties(parties []domain.MailParty) []domain.MailParty {
	if parties == nil {
		return []domain.MailParty{}
	}
	return parties
}
