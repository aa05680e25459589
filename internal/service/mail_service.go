package service

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const mailTarget = "Mail"

// MailFolder names a mailbox view.
type MailFolder string

const (
	FolderInbox   MailFolder = "inbox"
	FolderSent    MailFolder = "sent"
	FolderDrafts  MailFolder = "drafts"
	FolderDeleted MailFolder = "deleted"
)

// UserDirectory resolves mail recipients to accounts.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// MailService implements the internal mailbox.
type MailService struct {
	mails         repository.MailRepository
	users         UserDirectory
	activity      ActivityRecorder
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	markdown      goldmark.Markdown
	sanitizer     *bluemonday.Policy
	maxAttachment int64
	now           func() time.Time
}

// MailDependencies bundles collaborators for the mail service.
type MailDependencies struct {
	MailRepo           repository.MailRepository
	Users              UserDirectory
	Activity           ActivityRecorder
	Dispatcher         events.Dispatcher
	Logger             *zap.Logger
	MaxAttachmentBytes int64
}

// MailInput is the compose form. DraftID continues an existing draft.
type MailInput struct {
	DraftID      string
	RecipientIDs []string
	CCIDs        []string
	Subject      string
	Content      string
	Attachments  []domain.MailAttachment
}

// MailView is a mail as seen by one user.
type MailView struct {
	domain.Mail
	ContentHTML string
	Read        bool
	Starred     bool
}

// MailCounts feeds the mailbox badges.
type MailCounts struct {
	UnreadInbox int
	Drafts      int
}

// NewMailService constructs the service.
func NewMailService(deps MailDependencies) *MailService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailService{
		mails:         deps.MailRepo,
		users:         deps.Users,
		activity:      deps.Activity,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		markdown:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer:     bluemonday.UGCPolicy(),
		maxAttachment: deps.MaxAttachmentBytes,
		now:           systemClock,
	}
}

// Folder lists one mailbox view, newest first.
func (s *MailService) Folder(ctx context.Context, viewer domain.Actor, folder MailFolder) ([]MailView, error) {
	var keep func(*domain.Mail) bool
	switch folder {
	case FolderInbox:
		keep = func(m *domain.Mail) bool { return m.InInbox(viewer.ID) }
	case FolderSent:
		keep = func(m *domain.Mail) bool { return m.InSent(viewer.ID) }
	case FolderDrafts:
		keep = func(m *domain.Mail) bool { return m.InDrafts(viewer.ID) }
	case FolderDeleted:
		keep = func(m *domain.Mail) bool { return m.InTrash() }
	default:
		return nil, apperrors.NewValidationError("unknown folder", map[string]any{"folder": folder})
	}

	mails, err := s.mails.ListInvolving(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	out := make([]MailView, 0, len(mails))
	for i := range mails {
		if keep(&mails[i]) {
			out = append(out, s.view(&mails[i], viewer.ID))
		}
	}
	return out, nil
}

// Get returns one mail the viewer is involved in.
func (s *MailService) Get(ctx context.Context, viewer domain.Actor, id string) (*MailView, error) {
	mail, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	view := s.view(mail, viewer.ID)
	return &view, nil
}

// Counts returns the unread inbox and draft totals.
func (s *MailService) Counts(ctx context.Context, viewer domain.Actor) (*MailCounts, error) {
	mails, err := s.mails.ListInvolving(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	counts := &MailCounts{}
	for i := range mails {
		m := &mails[i]
		if m.InInbox(viewer.ID) && !m.ReadByUser(viewer.ID) {
			counts.UnreadInbox++
		}
		if m.InDrafts(viewer.ID) {
			counts.Drafts++
		}
	}
	return counts, nil
}

// Send delivers a new mail, or turns the given draft into a sent mail.
func (s *MailService) Send(ctx context.Context, sender domain.Actor, input MailInput) (*MailView, error) {
	to, cc, err := s.resolveParties(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, apperrors.NewValidationError("invalid mail", map[string]any{"recipients": "at least one recipient is required"})
	}
	if err := s.checkAttachments(input.Attachments); err != nil {
		return nil, err
	}

	mail, err := s.draftOrNew(ctx, sender, input.DraftID)
	if err != nil {
		return nil, err
	}
	mail.Recipients = to
	mail.CC = cc
	mail.Subject = strings.TrimSpace(input.Subject)
	mail.Content = input.Content
	mail.Attachments = input.Attachments
	mail.ReadBy = []string{sender.ID}
	mail.DeletedBy = []string{}
	mail.IsDraft = false
	mail.Timestamp = s.now().UTC()

	if err := s.store(ctx, mail); err != nil {
		return nil, err
	}

	names := make([]string, len(to))
	for i, p := range to {
		names[i] = p.Name
	}
	record(ctx, s.activity, sender, domain.ActionCreate, mailTarget, "Sent mail to "+strings.Join(names, ", "))

	view := s.view(mail, sender.ID)
	publish(ctx, s.dispatcher, events.New(events.EventMailSent, mail.ID, sender, events.MailSentPayload{
		MailID:      mail.ID,
		Subject:     mail.Subject,
		SenderName:  mail.SenderName,
		SenderEmail: mail.SenderEmail,
		To:          mail.Recipients,
		CC:          mail.CC,
		Content:     mail.Content,
		ContentHTML: view.ContentHTML,
	}))
	return &view, nil
}

// SaveDraft stores the compose form without sending it.
func (s *MailService) SaveDraft(ctx context.Context, sender domain.Actor, input MailInput) (*MailView, error) {
	to, cc, err := s.resolveParties(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkAttachments(input.Attachments); err != nil {
		return nil, err
	}

	mail, err := s.draftOrNew(ctx, sender, input.DraftID)
	if err != nil {
		return nil, err
	}
	mail.Recipients = to
	mail.CC = cc
	mail.Subject = strings.TrimSpace(input.Subject)
	if mail.Subject == "" {
		mail.Subject = domain.DefaultMailSubject
	}
	mail.Content = input.Content
	mail.Attachments = input.Attachments
	mail.DeletedBy = []string{}
	mail.IsDraft = true
	mail.Timestamp = s.now().UTC()

	if err := s.store(ctx, mail); err != nil {
		return nil, err
	}
	view := s.view(mail, sender.ID)
	return &view, nil
}

// Delete moves the mail to the viewer's trash.
func (s *MailService) Delete(ctx context.Context, viewer domain.Actor, id string) error {
	err := s.mutate(ctx, viewer, id, func(m *domain.Mail) { m.DeletedBy = domain.AddID(m.DeletedBy, viewer.ID) })
	if err != nil {
		return err
	}
	record(ctx, s.activity, viewer, domain.ActionDelete, mailTarget, "Deleted mail "+id)
	return nil
}

// Restore takes the mail out of every trash.
func (s *MailService) Restore(ctx context.Context, viewer domain.Actor, id string) error {
	return s.mutate(ctx, viewer, id, func(m *domain.Mail) { m.DeletedBy = []string{} })
}

// MarkRead flags the mail as read or unread for the viewer.
func (s *MailService) MarkRead(ctx context.Context, viewer domain.Actor, id string, read bool) error {
	return s.mutate(ctx, viewer, id, func(m *domain.Mail) {
		if read {
			m.ReadBy = domain.AddID(m.ReadBy, viewer.ID)
		} else {
			m.ReadBy = domain.RemoveID(m.ReadBy, viewer.ID)
		}
	})
}

// ToggleStar flips the viewer's star and returns the new state.
func (s *MailService) ToggleStar(ctx context.Context, viewer domain.Actor, id string) (bool, error) {
	var starred bool
	err := s.mutate(ctx, viewer, id, func(m *domain.Mail) {
		if m.StarredByUser(viewer.ID) {
			m.StarredBy = domain.RemoveID(m.StarredBy, viewer.ID)
		} else {
			m.StarredBy = domain.AddID(m.StarredBy, viewer.ID)
			starred = true
		}
	})
	return starred, err
}

// RenderHTML turns markdown content into sanitized HTML.
func (s *MailService) RenderHTML(content string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		s.logger.Debug("markdown render failed", zap.Error(err))
		return s.sanitizer.Sanitize(content)
	}
	return s.sanitizer.Sanitize(buf.String())
}

func (s *MailService) view(m *domain.Mail, viewerID string) MailView {
	return MailView{
		Mail:        *m,
		ContentHTML: s.RenderHTML(m.Content),
		Read:        m.ReadByUser(viewerID),
		Starred:     m.StarredByUser(viewerID),
	}
}

func (s *MailService) load(ctx context.Context, viewer domain.Actor, id string) (*domain.Mail, error) {
	notFound := apperrors.NewNotFound("mail", map[string]any{"id": id})
	if !isID(id) {
		return nil, notFound
	}
	mail, err := s.mails.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, notFound
		}
		return nil, err
	}
	if !mail.Involves(viewer.ID) {
		return nil, notFound
	}
	return mail, nil
}

func (s *MailService) mutate(ctx context.Context, viewer domain.Actor, id string, change func(*domain.Mail)) error {
	mail, err := s.load(ctx, viewer, id)
	if err != nil {
		return err
	}
	change(mail)
	if err := s.mails.Save(ctx, mail); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// draftOrNew loads the sender's draft or starts a fresh mail stamped with the sender.
func (s *MailService) draftOrNew(ctx context.Context, sender domain.Actor, draftID string) (*domain.Mail, error) {
	if draftID != "" {
		mail, err := s.load(ctx, sender, draftID)
		if err != nil {
			return nil, err
		}
		if !mail.IsDraft || mail.SenderID != sender.ID {
			return nil, apperrors.NewConflict("mail is not an editable draft", map[string]any{"id": draftID})
		}
		return mail, nil
	}

	mail := &domain.Mail{
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		SenderAvatar: sender.Avatar,
		StarredBy:    []string{},
		ReadBy:       []string{},
	}
	if user, err := s.users.GetByID(ctx, sender.ID); err == nil {
		mail.SenderEmail = user.Email
	}
	return mail, nil
}

func (s *MailService) store(ctx context.Context, mail *domain.Mail) error {
	if mail.ID == "" {
		if err := s.mails.Create(ctx, mail); err != nil {
			return apperrors.NewInternalError(err)
		}
		return nil
	}
	if err := s.mails.Save(ctx, mail); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *MailService) resolveParties(ctx context.Context, input MailInput) ([]domain.MailParty, []domain.MailParty, error) {
	to, err := s.partiesOf(ctx, "recipients", input.RecipientIDs)
	if err != nil {
		return nil, nil, err
	}
	cc, err := s.partiesOf(ctx, "cc", input.CCIDs)
	if err != nil {
		return nil, nil, err
	}
	return to, cc, nil
}

func (s *MailService) partiesOf(ctx context.Context, field string, ids []string) ([]domain.MailParty, error) {
	parties := make([]domain.MailParty, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !isID(id) {
			return nil, apperrors.NewValidationError("invalid mail", map[string]any{field: "unknown user " + id})
		}
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewValidationError("invalid mail", map[string]any{field: "unknown user " + id})
			}
			return nil, err
		}
		parties = append(parties, domain.MailParty{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	return parties, nil
}

func (s *MailService) checkAttachments(attachments []domain.MailAttachment) error {
	if s.maxAttachment <= 0 {
		return nil
	}
	var total int64
	for _, a := range attachments {
		total += a.Size
	}
	if total > s.maxAttachment {
		return apperrors.NewValidationError("attachments too large", map[string]any{
			"attachments": "total size exceeds the limit",
			"limit":       s.maxAttachment,
		})
	}
	return nil
}
