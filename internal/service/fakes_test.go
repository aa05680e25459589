package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
)

type activityEntry struct {
	actor   domain.Actor
	action  domain.ActivityAction
	target  string
	details string
}

type activitySpy struct {
	mu      sync.Mutex
	entries []activityEntry
}

func (a *activitySpy) Record(_ context.Context, actor domain.Actor, action domain.ActivityAction, target, details string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, activityEntry{actor: actor, action: action, target: target, details: details})
}

func (a *activitySpy) last() activityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return activityEntry{}
	}
	return a.entries[len(a.entries)-1]
}

type fakeCommentRepo struct {
	byComplaint map[string][]domain.Comment
	seq         int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byComplaint: map[string][]domain.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.seq++
	c.ID = uuid.NewString()
	c.Seq = r.seq
	c.CreatedAt = time.Now()
	r.byComplaint[c.ComplaintID] = append(r.byComplaint[c.ComplaintID], *c)
	return nil
}

func (r *fakeCommentRepo) ListByComplaint(_ context.Context, id string) ([]domain.Comment, error) {
	return append([]domain.Comment{}, r.byComplaint[id]...), nil
}

type fakeComplaintRepo struct {
	items    []*domain.Complaint
	comments *fakeCommentRepo
	listErr  error
}

func newFakeComplaintRepo(comments *fakeCommentRepo) *fakeComplaintRepo {
	return &fakeComplaintRepo{comments: comments}
}

func (r *fakeComplaintRepo) withComments(c domain.Complaint) domain.Complaint {
	c.Comments = append([]domain.Comment{}, r.comments.byComplaint[c.ID]...)
	return c
}

func (r *fakeComplaintRepo) List(_ context.Context) ([]domain.Complaint, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Complaint, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.withComments(*r.items[i]))
	}
	return out, nil
}

func (r *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	for _, c := range r.items {
		if c.ID == id {
			found := r.withComments(*c)
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeComplaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.items = append(r.items, &stored)
	return nil
}

func (r *fakeComplaintRepo) Update(_ context.Context, id string, p repository.ComplaintPatch) error {
	for _, c := range r.items {
		if c.ID != id {
			continue
		}
		if p.Customer != nil {
			c.Customer = *p.Customer
		}
		if p.TerminalID != nil {
			c.TerminalID = *p.TerminalID
		}
		if p.TransactionAt != nil {
			c.TransactionAt = *p.TransactionAt
		}
		if p.ReceivedAt != nil {
			c.ReceivedAt = *p.ReceivedAt
		}
		if p.ComplaintType != nil {
			c.ComplaintType = *p.ComplaintType
		}
		if p.Severity != nil {
			c.Severity = *p.Severity
		}
		if p.Verification != nil {
			c.Verification = *p.Verification
		}
		if p.Status != nil {
			c.Status = *p.Status
		}
		return nil
	}
	return pgx.ErrNoRows
}

type fakeReadState struct {
	seen map[string]map[string]int
	err  error
}

func newFakeReadState() *fakeReadState {
	return &fakeReadState{seen: map[string]map[string]int{}}
}

func (r *fakeReadState) LastSeen(_ context.Context, userID string) (map[string]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := map[string]int{}
	for k, v := range r.seen[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *fakeReadState) MarkSeen(_ context.Context, userID, complaintID string, count int) error {
	if r.err != nil {
		return r.err
	}
	if r.seen[userID] == nil {
		r.seen[userID] = map[string]int{}
	}
	r.seen[userID][complaintID] = count
	return nil
}

type fakeLocationRepo struct {
	items []*domain.Location
}

func (r *fakeLocationRepo) List(_ context.Context, search string) ([]domain.Location, error) {
	search = strings.ToLower(search)
	out := []domain.Location{}
	for i := len(r.items) - 1; i >= 0; i-- {
		l := r.items[i]
		if search == "" || strings.Contains(strings.ToLower(l.TerminalID), search) ||
			strings.Contains(strings.ToLower(l.Name), search) || strings.Contains(strings.ToLower(l.TerminalCode), search) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) Lookup(_ context.Context, term string, limit int) ([]domain.Location, error) {
	out := []domain.Location{}
	for _, l := range r.items {
		if l.MatchesLookup(term) {
			out = append(out, *l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id string) (*domain.Location, error) {
	for _, l := range r.items {
		if l.ID == id {
			found := *l
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeLocationRepo) Create(_ context.Context, l *domain.Location) error {
	l.ID = uuid.NewString()
	stored := *l
	r.items = append(r.items, &stored)
	return nil
}

func (r *fakeLocationRepo) CreateMany(ctx context.Context, ls []*domain.Location) error {
	for _, l := range ls {
		if err := r.Create(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeLocationRepo) Update(_ context.Context, l *domain.Location) error {
	for i, stored := range r.items {
		if stored.ID == l.ID {
			updated := *l
			r.items[i] = &updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeLocationRepo) Delete(_ context.Context, id string) error {
	for i, l := range r.items {
		if l.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeLocationRepo) TerminalCodeExists(_ context.Context, code string) (bool, error) {
	for _, l := range r.items {
		if l.TerminalCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLocationRepo) TerminalIDs(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l.TerminalID)
	}
	return out, nil
}

type fakeMasterRepo struct {
	items []*domain.MasterItem
}

func (r *fakeMasterRepo) ListByType(_ context.Context, t domain.MasterType) ([]domain.MasterItem, error) {
	out := []domain.MasterItem{}
	for _, item := range r.items {
		if item.Type == t {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeMasterRepo) GetByID(_ context.Context, id string) (*domain.MasterItem, error) {
	for _, item := range r.items {
		if item.ID == id {
			found := *item
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMasterRepo) Create(_ context.Context, item *domain.MasterItem) error {
	item.ID = uuid.NewString()
	stored := *item
	r.items = append(r.items, &stored)
	return nil
}

func (r *fakeMasterRepo) CreateMany(ctx context.Context, items []*domain.MasterItem) error {
	for _, item := range items {
		if err := r.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMasterRepo) Update(_ context.Context, item *domain.MasterItem) error {
	for _, stored := range r.items {
		if stored.ID == item.ID {
			stored.Name = item.Name
			stored.Description = item.Description
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeMasterRepo) Delete(_ context.Context, id string) error {
	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeUserRepo struct {
	users []*domain.User
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	stored := *u
	r.users = append(r.users, &stored)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	for i, stored := range r.users {
		if stored.ID == u.ID {
			updated := *u
			r.users[i] = &updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := *u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id, lastLogin string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.LastLogin = lastLogin
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeMailRepo struct {
	mails []*domain.Mail
	clock time.Time
}

func (r *fakeMailRepo) Create(_ context.Context, m *domain.Mail) error {
	m.ID = uuid.NewString()
	if r.clock.IsZero() {
		r.clock = time.Now()
	}
	r.clock = r.clock.Add(time.Second)
	m.Timestamp = r.clock
	stored := *m
	r.mails = append(r.mails, &stored)
	return nil
}

func (r *fakeMailRepo) Save(_ context.Context, m *domain.Mail) error {
	for i, stored := range r.mails {
		if stored.ID == m.ID {
			updated := *m
			r.mails[i] = &updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeMailRepo) GetByID(_ context.Context, id string) (*domain.Mail, error) {
	for _, m := range r.mails {
		if m.ID == id {
			found := *m
			found.ReadBy = append([]string{}, m.ReadBy...)
			found.StarredBy = append([]string{}, m.StarredBy...)
			found.DeletedBy = append([]string{}, m.DeletedBy...)
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMailRepo) ListInvolving(_ context.Context, userID string) ([]domain.Mail, error) {
	out := []domain.Mail{}
	for i := len(r.mails) - 1; i >= 0; i-- {
		if r.mails[i].Involves(userID) {
			out = append(out, *r.mails[i])
		}
	}
	return out, nil
}

type fakeCaptchaRepo struct {
	codes map[string]string
}

func (r *fakeCaptchaRepo) Store(_ context.Context, c domain.Captcha, _ time.Duration) error {
	if r.codes == nil {
		r.codes = map[string]string{}
	}
	r.codes[c.ID] = c.Code
	return nil
}

func (r *fakeCaptchaRepo) Take(_ context.Context, id string) (string, bool, error) {
	code, ok := r.codes[id]
	delete(r.codes, id)
	return code, ok, nil
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg OutgoingMail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
