package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// setupTestPostgres migrates a fresh schema on POSTGRES_DSN and drops it afterwards.
func setupTestPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	schema := "repo_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return pool
}

func insertComplaint(t *testing.T, repo ComplaintRepository, customer string, receivedAt time.Time) *domain.Complaint {
	t.Helper()
	c := &domain.Complaint{
		TicketNumber:  "TKT-10001",
		Customer:      customer,
		TerminalID:    "TID-00123",
		TransactionAt: receivedAt.Add(-time.Hour),
		ReceivedAt:    receivedAt,
		ComplaintType: domain.DefaultComplaintType,
		Severity:      domain.SeverityMedium,
		Verification:  domain.VerificationValid,
		Status:        domain.ComplaintStatusOpen,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestComplaintRepository_ListOrder(t *testing.T) {
	pool := setupTestPostgres(t)
	repo := NewComplaintRepository(pool)
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	older := insertComplaint(t, repo, "Ani", base)
	first := insertComplaint(t, repo, "Budi", base.Add(time.Hour))
	second := insertComplaint(t, repo, "Citra", base.Add(time.Hour))
	// Received earliest but created last: waktu_aduan decides, not insertion.
	oldest := insertComplaint(t, repo, "Dedi", base.Add(-time.Hour))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	got := make([]string, len(list))
	for i := range list {
		got[i] = list[i].ID
		assert.NotNil(t, list[i].Comments)
	}
	assert.Equal(t, []string{second.ID, first.ID, older.ID, oldest.ID}, got)
}

func TestComplaintRepository_CommentsInInsertionOrder(t *testing.T) {
	pool := setupTestPostgres(t)
	complaints := NewComplaintRepository(pool)
	comments := NewCommentRepository(pool)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	a := insertComplaint(t, complaints, "Ani", base)
	b := insertComplaint(t, complaints, "Budi", base.Add(time.Minute))
	untouched := insertComplaint(t, complaints, "Citra", base.Add(2*time.Minute))

	for _, step := range []struct {
		complaint *domain.Complaint
		text      string
	}{
		{a, "a1"}, {b, "b1"}, {a, "a2"}, {b, "b2"}, {a, "a3"},
	} {
		require.NoError(t, comments.Create(ctx, &domain.Comment{
			ComplaintID: step.complaint.ID, AuthorID: "u-1", AuthorName: "Siti",
			AuthorRole: string(domain.RoleHelpdesk), Text: step.text,
		}))
	}

	texts := func(cs []domain.Comment) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Text
			if i > 0 {
				assert.Greater(t, c.Seq, cs[i-1].Seq)
			}
		}
		return out
	}

	list, err := complaints.List(ctx)
	require.NoError(t, err)
	byID := map[string]domain.Complaint{}
	for _, c := range list {
		byID[c.ID] = c
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, texts(byID[a.ID].Comments))
	assert.Equal(t, []string{"b1", "b2"}, texts(byID[b.ID].Comments))
	assert.Empty(t, byID[untouched.ID].Comments)

	got, err := complaints.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, texts(got.Comments))

	thread, err := comments.ListByComplaint(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, texts(thread))
}

func TestComplaintRepository_Update(t *testing.T) {
	pool := setupTestPostgres(t)
	repo := NewComplaintRepository(pool)
	ctx := context.Background()
	created := insertComplaint(t, repo, "Budi", time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	closed := domain.ComplaintStatusClosed
	err := repo.Update(ctx, uuid.NewString(), ComplaintPatch{Status: &closed})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.True(t, apperrors.IsNotFound(err))

	customer := "Budi Santoso"
	require.NoError(t, repo.Update(ctx, created.ID, ComplaintPatch{Status: &closed, Customer: &customer}))
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, closed, got.Status)
	assert.Equal(t, customer, got.Customer)
	assert.Equal(t, created.TerminalID, got.TerminalID)
}

func TestLocationRepository_LookupIsLiteral(t *testing.T) {
	pool := setupTestPostgres(t)
	repo := NewLocationRepository(pool)
	ctx := context.Background()

	for i, tid := range []string{"TID_01", "TIDX01", "TID%02"} {
		require.NoError(t, repo.Create(ctx, &domain.Location{
			TerminalCode: fmt.Sprintf("RND-%04d", i+1), TerminalID: tid, Name: "Indomaret " + tid,
			OpensAt: "07:00", ClosesAt: "22:00", FLM: domain.FLMAdvantage, SLM: domain.SLMDN,
			Placement: domain.PlacementIndomaret, Active: true,
		}))
	}

	got, err := repo.Lookup(ctx, "TID_01", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TID_01", got[0].TerminalID)

	got, err = repo.List(ctx, "d%0")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TID%02", got[0].TerminalID)
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TID-001", "%TID-001%"},
		{"TID_01", `%TID\_01%`},
		{"50%", `%50\%%`},
		{`a\b`, `%a\\b%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.in), tt.in)
	}
}
