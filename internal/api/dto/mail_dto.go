package dto

import (
	"time"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// MailRequest composes or updates a mail. DraftID continues an existing draft.
type MailRequest struct {
	DraftID      string                  `json:"draft_id" validate:"omitempty,uuid"`
	RecipientIDs []string                `json:"recipients" validate:"dive,uuid"`
	CCIDs        []string                `json:"cc" validate:"dive,uuid"`
	Subject      string                  `json:"subject" validate:"max=250"`
	Content      string                  `json:"content"`
	Attachments  []domain.MailAttachment `json:"attachments"`
}

// MailReadRequest toggles the read flag.
type MailReadRequest struct {
	Read bool `json:"read"`
}

// MailResponse is a mail as seen by one user.
type MailResponse struct {
	ID           string                  `json:"id"`
	SenderID     string                  `json:"sender_id"`
	SenderName   string                  `json:"sender_name"`
	SenderEmail  string                  `json:"sender_email"`
	SenderAvatar string                  `json:"sender_avatar"`
	Recipients   []domain.MailParty      `json:"recipients"`
	CC           []domain.MailParty      `json:"cc"`
	Subject      string                  `json:"subject"`
	Content      string                  `json:"content"`
	ContentHTML  string                  `json:"content_html"`
	Attachments  []domain.MailAttachment `json:"attachments"`
	IsDraft      bool                    `json:"is_draft"`
	Read         bool                    `json:"read"`
	Starred      bool                    `json:"starred"`
	Timestamp    time.Time               `json:"timestamp"`
}

// MailCountsResponse feeds the sidebar badges.
type MailCountsResponse struct {
	UnreadInbox int `json:"unread_inbox"`
	Drafts      int `json:"drafts"`
}
