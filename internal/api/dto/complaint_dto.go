package dto

import (
	"time"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// CreateComplaintRequest is the complaint creation form.
type CreateComplaintRequest struct {
	Customer      string `json:"nasabah" validate:"required,max=200"`
	TerminalID    string `json:"terminal_id" validate:"required,max=64"`
	TransactionAt string `json:"waktu_trx" validate:"required"`
	ReceivedAt    string `json:"waktu_aduan" validate:"required"`
	ComplaintType string `json:"jenis_aduan" validate:"max=120"`
	Severity      string `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Verification  string `json:"pengecekan" validate:"omitempty,oneof=VALID 'TIDAK VALID'"`
	Status        string `json:"status" validate:"omitempty,oneof=OPEN 'IN PROGRESS' HOLD CLOSED"`
}

// UpdateComplaintRequest carries edited fields; empty fields are left unchanged.
type UpdateComplaintRequest struct {
	Customer      string `json:"nasabah" validate:"max=200"`
	TerminalID    string `json:"terminal_id" validate:"max=64"`
	TransactionAt string `json:"waktu_trx"`
	ReceivedAt    string `json:"waktu_aduan"`
	ComplaintType string `json:"jenis_aduan" validate:"max=120"`
	Severity      string `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Verification  string `json:"pengecekan" validate:"omitempty,oneof=VALID 'TIDAK VALID'"`
	Status        string `json:"status" validate:"omitempty,oneof=OPEN 'IN PROGRESS' HOLD CLOSED"`
}

// CreateCommentRequest posts one comment to a thread.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// ComplaintResponse is a complaint as seen by the caller.
type ComplaintResponse struct {
	ID            string                 `json:"id"`
	TicketNumber  string                 `json:"no_tiket"`
	Customer      string                 `json:"nasabah"`
	TerminalID    string                 `json:"terminal_id"`
	TransactionAt time.Time              `json:"waktu_trx"`
	ReceivedAt    time.Time              `json:"waktu_aduan"`
	ComplaintType string                 `json:"jenis_aduan"`
	Severity      domain.Severity        `json:"severity"`
	Verification  domain.Verification    `json:"pengecekan"`
	Status        domain.ComplaintStatus `json:"status"`
	Downtime      string                 `json:"downtime,omitempty"`
	UnreadCount   int                    `json:"unread_count"`
	CommentCount  int                    `json:"comment_count"`
	Comments      []CommentResponse      `json:"comments,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserRole   string    `json:"user_role"`
	UserAvatar string    `json:"user_avatar"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	IsOwn      bool      `json:"is_own"`
}

// TerminalOption is one type-ahead suggestion.
type TerminalOption struct {
	TerminalID string `json:"terminal_id"`
	Name       string `json:"nama_lokasi"`
	Address    string `json:"alamat"`
}

// IncidentResponse is one active incident row on the dashboard.
type IncidentResponse struct {
	ComplaintResponse
	LocationName string `json:"nama_lokasi"`
	FLM          string `json:"flm"`
	SLM          string `json:"slm"`
	Tone         string `json:"tone,omitempty"`
}

// IncidentPageResponse is one page of active incidents.
type IncidentPageResponse struct {
	Items      []IncidentResponse `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalItems int                `json:"total_items"`
	TotalPages int                `json:"total_pages"`
}

// BucketResponse is one dashboard tab.
type BucketResponse struct {
	Key   string             `json:"key"`
	Count int                `json:"count"`
	Rows  []IncidentResponse `json:"rows"`
}
