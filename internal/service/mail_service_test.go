package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
)

type mailFixture struct {
	svc      *MailService
	mails    *fakeMailRepo
	activity *activitySpy
	admin    domain.Actor
	siti     domain.Actor
	joko     domain.Actor
	mu       sync.Mutex
	sent     []events.MailSentPayload
}

func newMailFixture(t *testing.T) *mailFixture {
	t.Helper()
	users := &fakeUserRepo{users: []*domain.User{
		{ID: "11111111-1111-4111-8111-111111111111", Name: "Administrator", Email: "admin@problemlog.com"},
		{ID: "22222222-2222-4222-8222-222222222222", Name: "Siti Aminah", Email: "siti@problemlog.com"},
		{ID: "33333333-3333-4333-8333-333333333333", Name: "Joko Widodo", Email: "joko@problemlog.com"},
	}}
	f := &mailFixture{
		mails:    &fakeMailRepo{},
		activity: &activitySpy{},
		admin:    users.users[0].Actor(),
		siti:     users.users[1].Actor(),
		joko:     users.users[2].Actor(),
	}
	dispatcher := events.NewInMemoryDispatcher(nil)
	dispatcher.Subscribe(events.EventMailSent, func(_ context.Context, e events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sent = append(f.sent, e.Payload.(events.MailSentPayload))
		return nil
	})
	f.svc = NewMailService(MailDependencies{
		MailRepo:           f.mails,
		Users:              users,
		Activity:           f.activity,
		Dispatcher:         dispatcher,
		MaxAttachmentBytes: 1024,
	})
	return f
}

func folderIDs(t *testing.T, svc *MailService, viewer domain.Actor, folder MailFolder) []string {
	t.Helper()
	views, err := svc.Folder(context.Background(), viewer, folder)
	require.NoError(t, err)
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestMailService_SendAndFolders(t *testing.T) {
	f := newMailFixture(t)
	ctx := context.Background()

	sent, err := f.svc.Send(ctx, f.siti, MailInput{
		RecipientIDs: []string{f.admin.ID},
		CCIDs:        []string{f.joko.ID},
		Subject:      "Laporan Masalah ATM TID-00123",
		Content:      "Mohon **dicek** <script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, "siti@problemlog.com", sent.SenderEmail)
	assert.Equal(t, []string{f.siti.ID}, sent.ReadBy)
	assert.True(t, sent.Read)
	assert.Contains(t, sent.ContentHTML, "<strong>dicek</strong>")
	assert.NotContains(t, sent.ContentHTML, "<script>")
	assert.Equal(t, "Sent mail to Administrator", f.activity.last().details)

	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.admin, FolderInbox))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.joko, FolderInbox))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.siti, FolderSent))
	assert.Empty(t, folderIDs(t, f.svc, f.siti, FolderInbox))

	counts, err := f.svc.Counts(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.UnreadInbox)

	require.NoError(t, f.svc.MarkRead(ctx, f.admin, sent.ID, true))
	counts, err = f.svc.Counts(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.UnreadInbox)

	require.NoError(t, f.svc.MarkRead(ctx, f.admin, sent.ID, false))
	counts, err = f.svc.Counts(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.UnreadInbox)

	f.mu.Lock()
	require.Len(t, f.sent, 1)
	assert.Equal(t, "joko@problemlog.com", f.sent[0].CC[0].Email)
	f.mu.Unlock()
}

func TestMailService_SendValidation(t *testing.T) {
	f := newMailFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.siti, MailInput{Subject: "no one"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	_, err = f.svc.Send(ctx, f.siti, MailInput{RecipientIDs: []string{"44444444-4444-4444-8444-444444444444"}})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	_, err = f.svc.Send(ctx, f.siti, MailInput{
		RecipientIDs: []string{f.admin.ID},
		Attachments:  []domain.MailAttachment{{Name: "big.bin", Size: 2048}},
	})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	assert.Empty(t, f.mails.mails)
}

func TestMailService_DraftThenSend(t *testing.T) {
	f := newMailFixture(t)
	ctx := context.Background()

	draft, err := f.svc.SaveDraft(ctx, f.siti, MailInput{RecipientIDs: []string{f.admin.ID}})
	require.NoError(t, err)
	assert.True(t, draft.IsDraft)
	assert.Equal(t, domain.DefaultMailSubject, draft.Subject)
	assert.Equal(t, []string{draft.ID}, folderIDs(t, f.svc, f.siti, FolderDrafts))
	assert.Empty(t, folderIDs(t, f.svc, f.admin, FolderInbox))

	counts, err := f.svc.Counts(ctx, f.siti)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Drafts)

	_, err = f.svc.SaveDraft(ctx, f.admin, MailInput{DraftID: draft.ID})
	assert.Equal(t, "CONFLICT", codeOf(err))

	sent, err := f.svc.Send(ctx, f.siti, MailInput{DraftID: draft.ID, RecipientIDs: []string{f.admin.ID}, Subject: "Final"})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, sent.ID)
	assert.False(t, sent.IsDraft)
	assert.Empty(t, folderIDs(t, f.svc, f.siti, FolderDrafts))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.admin, FolderInbox))
	require.Len(t, f.mails.mails, 1)
}

func TestMailService_DeleteRestoreStar(t *testing.T) {
	f := newMailFixture(t)
	ctx := context.Background()

	sent, err := f.svc.Send(ctx, f.siti, MailInput{RecipientIDs: []string{f.admin.ID}, Subject: "Hi"})
	require.NoError(t, err)

	starred, err := f.svc.ToggleStar(ctx, f.admin, sent.ID)
	require.NoError(t, err)
	assert.True(t, starred)
	view, err := f.svc.Get(ctx, f.admin, sent.ID)
	require.NoError(t, err)
	assert.True(t, view.Starred)

	starred, err = f.svc.ToggleStar(ctx, f.admin, sent.ID)
	require.NoError(t, err)
	assert.False(t, starred)

	require.NoError(t, f.svc.Delete(ctx, f.admin, sent.ID))
	assert.Equal(t, "Deleted mail "+sent.ID, f.activity.last().details)
	assert.Empty(t, folderIDs(t, f.svc, f.admin, FolderInbox))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.admin, FolderDeleted))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.siti, FolderSent))
	assert.Empty(t, folderIDs(t, f.svc, f.joko, FolderDeleted))

	require.NoError(t, f.svc.Restore(ctx, f.admin, sent.ID))
	assert.Equal(t, []string{sent.ID}, folderIDs(t, f.svc, f.admin, FolderInbox))

	_, err = f.svc.Get(ctx, f.joko, sent.ID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))
	assert.Equal(t, "NOT_FOUND", codeOf(f.svc.Delete(ctx, f.joko, sent.ID)))

	_, err = f.svc.Folder(ctx, f.admin, "spam")
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}
