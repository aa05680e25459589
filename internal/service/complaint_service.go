package service

import (
	"context"
	"fmt"
	"html"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const complaintTarget = "Data Aduan"

// TerminalLookup finds terminals for the complaint form type-ahead.
type TerminalLookup interface {
	Lookup(ctx context.Context, term string, limit int) ([]domain.Location, error)
}

// ComplaintService coordinates complaint and thread workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	comments   repository.CommentRepository
	readState  repository.ReadStateRepository
	terminals  TerminalLookup
	activity   ActivityRecorder
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	sanitizer  *bluemonday.Policy
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	CommentRepo   repository.CommentRepository
	ReadStateRepo repository.ReadStateRepository
	Terminals     TerminalLookup
	Activity      ActivityRecorder
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Now           func() time.Time
}

// ComplaintCreateInput describes the creation form.
type ComplaintCreateInput struct {
	Customer      string
	TerminalID    string
	TransactionAt time.Time
	ReceivedAt    time.Time
	ComplaintType string
	Severity      domain.Severity
	Verification  domain.Verification
	Status        domain.ComplaintStatus
}

// ComplaintUpdateInput carries edited fields. Empty values leave the field unchanged.
type ComplaintUpdateInput struct {
	Customer      string
	TerminalID    string
	TransactionAt *time.Time
	ReceivedAt    *time.Time
	ComplaintType string
	Severity      domain.Severity
	Verification  domain.Verification
	Status        domain.ComplaintStatus
}

// ComplaintView is a complaint with the values derived for one viewer.
type ComplaintView struct {
	domain.Complaint
	Downtime     string
	UnreadCount  int
	CommentCount int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = systemClock
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		comments:   deps.CommentRepo,
		readState:  deps.ReadStateRepo,
		terminals:  deps.Terminals,
		activity:   deps.Activity,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
		now:        now,
	}
}

// List returns every complaint newest first, optionally filtered by search term, with
// downtime and unread counts computed for the viewer.
func (s *ComplaintService) List(ctx context.Context, viewer domain.Actor, search string) ([]ComplaintView, error) {
	complaints, err := s.complaints.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := s.lastSeen(ctx, viewer.ID)
	now := s.now()

	views := make([]ComplaintView, 0, len(complaints))
	for i := range complaints {
		if !complaints[i].MatchesSearch(search) {
			continue
		}
		views = append(views, s.view(complaints[i], now, seen[complaints[i].ID]))
	}
	return views, nil
}

// OpenThread returns the complaint with its comments and marks them seen by the viewer.
func (s *ComplaintService) OpenThread(ctx context.Context, viewer domain.Actor, id string) (*ComplaintView, error) {
	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	count := len(complaint.Comments)
	if err := s.readState.MarkSeen(ctx, viewer.ID, complaint.ID, count); err != nil {
		s.logger.Warn("unable to record thread view", zap.String("complaint_id", complaint.ID), zap.Error(err))
	}
	view := s.view(*complaint, s.now(), count)
	return &view, nil
}

// Create validates the form, applies defaults and stores a new complaint.
func (s *ComplaintService) Create(ctx context.Context, actor domain.Actor, input ComplaintCreateInput) (*ComplaintView, error) {
	complaint := &domain.Complaint{
		TicketNumber:  generateTicketNumber(),
		Customer:      strings.TrimSpace(input.Customer),
		TerminalID:    strings.TrimSpace(input.TerminalID),
		TransactionAt: input.TransactionAt,
		ReceivedAt:    input.ReceivedAt,
		ComplaintType: strings.TrimSpace(input.ComplaintType),
		Severity:      input.Severity,
		Verification:  input.Verification,
		Status:        input.Status,
	}
	if complaint.ComplaintType == "" {
		complaint.ComplaintType = domain.DefaultComplaintType
	}
	if complaint.Severity == "" {
		complaint.Severity = domain.SeverityMedium
	}
	if complaint.Verification == "" {
		complaint.Verification = domain.VerificationValid
	}
	if complaint.Status == "" {
		complaint.Status = domain.ComplaintStatusOpen
	}

	details := map[string]any{}
	if complaint.Customer == "" {
		details["nasabah"] = "required"
	}
	if complaint.TerminalID == "" {
		details["terminal_id"] = "required"
	}
	if complaint.TransactionAt.IsZero() {
		details["waktu_trx"] = "required"
	}
	if complaint.ReceivedAt.IsZero() {
		details["waktu_aduan"] = "required"
	}
	validateEnums(details, complaint.Severity, complaint.Verification, complaint.Status)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint", details)
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.ComplaintCreated(string(complaint.Severity))
	record(ctx, s.activity, actor, domain.ActionCreate, complaintTarget,
		fmt.Sprintf("Membuat aduan baru %s - %s", complaint.TicketNumber, complaint.Customer))
	publish(ctx, s.dispatcher, events.New(events.EventComplaintCreated, complaint.ID, actor, events.ComplaintCreatedPayload{
		TicketNumber:  complaint.TicketNumber,
		Customer:      complaint.Customer,
		TerminalID:    complaint.TerminalID,
		ComplaintType: complaint.ComplaintType,
		Severity:      complaint.Severity,
		ReceivedAt:    complaint.ReceivedAt,
	}))

	view := s.view(*complaint, s.now(), 0)
	return &view, nil
}

// Update applies the non-empty fields of input and returns the stored complaint as seen
// by actor. Any status may move to any other status.
func (s *ComplaintService) Update(ctx context.Context, actor domain.Actor, id string, input ComplaintUpdateInput) (*ComplaintView, error) {
	if !isID(id) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}

	var patch repository.ComplaintPatch
	var changed []string
	if v := strings.TrimSpace(input.Customer); v != "" {
		patch.Customer = &v
		changed = append(changed, "nasabah")
	}
	if v := strings.TrimSpace(input.TerminalID); v != "" {
		patch.TerminalID = &v
		changed = append(changed, "terminal_id")
	}
	if input.TransactionAt != nil && !input.TransactionAt.IsZero() {
		patch.TransactionAt = input.TransactionAt
		changed = append(changed, "waktu_trx")
	}
	if input.ReceivedAt != nil && !input.ReceivedAt.IsZero() {
		patch.ReceivedAt = input.ReceivedAt
		changed = append(changed, "waktu_aduan")
	}
	if v := strings.TrimSpace(input.ComplaintType); v != "" {
		patch.ComplaintType = &v
		changed = append(changed, "jenis_aduan")
	}
	if input.Severity != "" {
		patch.Severity = &input.Severity
		changed = append(changed, "severity")
	}
	if input.Verification != "" {
		patch.Verification = &input.Verification
		changed = append(changed, "pengecekan")
	}
	if input.Status != "" {
		patch.Status = &input.Status
		changed = append(changed, "status")
	}

	details := map[string]any{}
	validateEnums(details, input.Severity, input.Verification, input.Status)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint", details)
	}

	if !patch.Empty() {
		if err := s.complaints.Update(ctx, id, patch); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
			}
			return nil, apperrors.NewInternalError(err)
		}
	}

	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.view(*complaint, s.now(), s.lastSeen(ctx, actor.ID)[complaint.ID])
	if patch.Empty() {
		return &view, nil
	}

	record(ctx, s.activity, actor, domain.ActionUpdate, complaintTarget,
		fmt.Sprintf("Memperbarui data aduan %s", complaint.Customer))
	publish(ctx, s.dispatcher, events.New(events.EventComplaintUpdated, complaint.ID, actor, events.ComplaintUpdatedPayload{
		TicketNumber: complaint.TicketNumber,
		Customer:     complaint.Customer,
		Status:       complaint.Status,
		Severity:     complaint.Severity,
		Changed:      changed,
	}))
	return &view, nil
}

// AppendComment adds a comment to the thread and marks the thread seen by its author.
func (s *ComplaintService) AppendComment(ctx context.Context, actor domain.Actor, id, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
	if text == "" {
		return nil, apperrors.NewValidationError("comment text is required", map[string]any{"text": "required"})
	}

	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ComplaintID:  complaint.ID,
		AuthorID:     actor.ID,
		AuthorName:   actor.Name,
		AuthorRole:   actor.Role,
		AuthorAvatar: actor.Avatar,
		Text:         text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	count := len(complaint.Comments) + 1
	if err := s.readState.MarkSeen(ctx, actor.ID, complaint.ID, count); err != nil {
		s.logger.Warn("unable to record thread view", zap.String("complaint_id", complaint.ID), zap.Error(err))
	}

	s.metrics.CommentAppended()
	record(ctx, s.activity, actor, domain.ActionUpdate, complaintTarget,
		fmt.Sprintf("Menambahkan komentar pada tiket %s", complaint.TicketNumber))
	publish(ctx, s.dispatcher, events.New(events.EventComplaintCommentAdded, complaint.ID, actor, events.CommentAddedPayload{
		TicketNumber: complaint.TicketNumber,
		CommentID:    comment.ID,
		AuthorName:   comment.AuthorName,
		Preview:      stringPreview(comment.Text, 120),
		CommentCount: count,
	}))
	return comment, nil
}

// SearchTerminals backs the terminal type-ahead of the complaint form.
func (s *ComplaintService) SearchTerminals(ctx context.Context, term string, limit int) ([]domain.Location, error) {
	term = strings.TrimSpace(term)
	if term == "" || s.terminals == nil {
		return []domain.Location{}, nil
	}
	return s.terminals.Lookup(ctx, term, limit)
}

func (s *ComplaintService) get(ctx context.Context, id string) (*domain.Complaint, error) {
	if !isID(id) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return complaint, nil
}

func (s *ComplaintService) lastSeen(ctx context.Context, viewerID string) map[string]int {
	seen, err := s.readState.LastSeen(ctx, viewerID)
	if err != nil {
		s.logger.Warn("unable to load read state", zap.String("user_id", viewerID), zap.Error(err))
		return map[string]int{}
	}
	return seen
}

func (s *ComplaintService) view(c domain.Complaint, now time.Time, lastSeen int) ComplaintView {
	if c.Comments == nil {
		c.Comments = []domain.Comment{}
	}
	return ComplaintView{
		Complaint:    c,
		Downtime:     c.Downtime(now),
		UnreadCount:  domain.UnreadCount(len(c.Comments), lastSeen),
		CommentCount: len(c.Comments),
	}
}

func validateEnums(details map[string]any, severity domain.Severity, verification domain.Verification, status domain.ComplaintStatus) {
	if severity != "" && !severity.Valid() {
		details["severity"] = "must be one of LOW, MEDIUM, HIGH"
	}
	if verification != "" && !verification.Valid() {
		details["pengecekan"] = "must be one of VALID, TIDAK VALID"
	}
	if status != "" && !status.Valid() {
		details["status"] = "must be one of OPEN, IN PROGRESS, HOLD, CLOSED"
	}
}

// generateTicketNumber draws TKT-NNNNN with a suffix in [10000, 99999]. Collisions are accepted.
func generateTicketNumber() string {
	return fmt.Sprintf("TKT-%d", 10000+rand.IntN(90000))
}
