package domain

import (
	"fmt"
	"strings"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusInProgress ComplaintStatus = "IN PROGRESS"
	ComplaintStatusHold       ComplaintStatus = "HOLD"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

// Severity enumerates complaint urgency.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Verification is the outcome of checking a complaint against terminal data.
type Verification string

const (
	VerificationValid   Verification = "VALID"
	VerificationInvalid Verification = "TIDAK VALID"
)

// DefaultComplaintType is preselected on the creation form.
const DefaultComplaintType = "Uang Tidak Keluar"

// ComplaintTypes lists the complaint types offered by the form. The field stays free text.
var ComplaintTypes = []string{
	"Uang Tidak Keluar",
	"Kartu Tertelan",
	"Selisih Transaksi",
	"ATM Offline",
}

// DowntimeDone is displayed for closed complaints.
const DowntimeDone = "Selesai"

// Complaint is the aggregate for a terminal incident raised by a customer or staff.
type Complaint struct {
	ID            string
	TicketNumber  string
	Customer      string
	TerminalID    string
	TransactionAt time.Time
	ReceivedAt    time.Time
	ComplaintType string
	Severity      Severity
	Verification  Verification
	Status        ComplaintStatus
	Comments      []Comment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Valid reports whether the status is one of the known values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusInProgress, ComplaintStatusHold, ComplaintStatusClosed:
		return true
	}
	return false
}

// Valid reports whether the severity is one of the known values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Valid reports whether the verification outcome is one of the known values.
func (v Verification) Valid() bool {
	return v == VerificationValid || v == VerificationInvalid
}

// Downtime renders the elapsed time since the complaint was received.
// Closed complaints always read "Selesai"; elapsed time before receipt clamps to zero.
func Downtime(now time.Time, status ComplaintStatus, receivedAt time.Time) string {
	if status == ComplaintStatusClosed {
		return DowntimeDone
	}
	elapsed := now.Sub(receivedAt)
	if elapsed < 0 {
		return "0j 0m"
	}
	hours := int64(elapsed / time.Hour)
	minutes := int64((elapsed % time.Hour) / time.Minute)
	return fmt.Sprintf("%dj %dm", hours, minutes)
}

// Downtime is a convenience wrapper over the package-level Downtime.
func (c *Complaint) Downtime(now time.Time) string {
	return Downtime(now, c.Status, c.ReceivedAt)
}

// IsActive reports whether the complaint still needs attention.
func (c *Complaint) IsActive() bool {
	return c.Status != ComplaintStatusClosed
}

// MatchesSearch does a case-insensitive substring match on ticket number, customer and terminal.
func (c *Complaint) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.TicketNumber), term) ||
		strings.Contains(strings.ToLower(c.Customer), term) ||
		strings.Contains(strings.ToLower(c.TerminalID), term)
}

// UnreadCount returns how many comments arrived after the viewer last saw the thread.
func UnreadCount(total, lastSeen int) int {
	if n := total - lastSeen; n > 0 {
		return n
	}
	return 0
}
