package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated      EventType = "complaint_created"
	EventComplaintUpdated      EventType = "complaint_updated"
	EventComplaintCommentAdded EventType = "complaint_comment_added"
	EventMailSent              EventType = "mail_sent"
)

// ComplaintEventTypes lists the events pushed to live consoles.
var ComplaintEventTypes = []EventType{EventComplaintCreated, EventComplaintUpdated, EventComplaintCommentAdded}

// Actor identifies who caused an event.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actor domain.Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	TicketNumber  string          `json:"no_tiket"`
	Customer      string          `json:"nasabah"`
	TerminalID    string          `json:"terminal_id"`
	ComplaintType string          `json:"jenis_aduan"`
	Severity      domain.Severity `json:"severity"`
	ReceivedAt    time.Time       `json:"waktu_aduan"`
}

// ComplaintUpdatedPayload payload.
type ComplaintUpdatedPayload struct {
	TicketNumber string                 `json:"no_tiket"`
	Customer     string                 `json:"nasabah"`
	Status       domain.ComplaintStatus `json:"status"`
	Severity     domain.Severity        `json:"severity"`
	Changed      []string               `json:"changed"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	TicketNumber string `json:"no_tiket"`
	CommentID    string `json:"comment_id"`
	AuthorName   string `json:"user_name"`
	Preview      string `json:"preview"`
	CommentCount int    `json:"comment_count"`
}

// MailSentPayload payload.
type MailSentPayload struct {
	MailID      string             `json:"mail_id"`
	Subject     string             `json:"subject"`
	SenderName  string             `json:"sender_name"`
	SenderEmail string             `json:"sender_email"`
	To          []domain.MailParty `json:"to"`
	CC          []domain.MailParty `json:"cc"`
	Content     string             `json:"content"`
	ContentHTML string             `json:"content_html"`
}
