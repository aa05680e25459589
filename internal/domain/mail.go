package domain

import "time"

// MailParty is a sender, recipient or cc address of an internal mail.
type MailParty struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MailAttachment carries a file inline as base64.
type MailAttachment struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// DefaultMailSubject is used when a draft has no subject.
const DefaultMailSubject = "(No Subject)"

// Mail is an internal message between console users.
type Mail struct {
	ID           string
	SenderID     string
	SenderName   string
	SenderEmail  string
	SenderAvatar string
	Recipients   []MailParty
	CC           []MailParty
	Subject      string
	Content      string
	Attachments  []MailAttachment
	ReadBy       []string
	StarredBy    []string
	DeletedBy    []string
	IsDraft      bool
	Timestamp    time.Time
}

// AddressedTo reports whether the user is among recipients or cc.
func (m *Mail) AddressedTo(userID string) bool {
	for _, r := range m.Recipients {
		if r.ID == userID {
			return true
		}
	}
	for _, r := range m.CC {
		if r.ID == userID {
			return true
		}
	}
	return false
}

// Involves reports whether the user sent or received the mail.
func (m *Mail) Involves(userID string) bool {
	return m.SenderID == userID || m.AddressedTo(userID)
}

// DeletedFor reports whether the user moved the mail to trash.
func (m *Mail) DeletedFor(userID string) bool {
	return containsID(m.DeletedBy, userID)
}

// ReadByUser reports whether the user has opened the mail.
func (m *Mail) ReadByUser(userID string) bool {
	return containsID(m.ReadBy, userID)
}

// StarredByUser reports whether the user starred the mail.
func (m *Mail) StarredByUser(userID string) bool {
	return containsID(m.StarredBy, userID)
}

// InInbox reports whether the mail belongs to the user's inbox.
func (m *Mail) InInbox(userID string) bool {
	return !m.IsDraft && !m.DeletedFor(userID) && m.AddressedTo(userID)
}

// InSent reports whether the mail belongs to the user's sent folder.
func (m *Mail) InSent(userID string) bool {
	return !m.IsDraft && !m.DeletedFor(userID) && m.SenderID == userID
}

// InDrafts reports whether the mail is one of the user's drafts.
func (m *Mail) InDrafts(userID string) bool {
	return m.IsDraft && !m.DeletedFor(userID) && m.SenderID == userID
}

// InTrash reports whether anyone has deleted the mail.
func (m *Mail) InTrash() bool {
	return len(m.DeletedBy) > 0
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID appends id when it is absent.
func AddID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID drops every occurrence of id.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
