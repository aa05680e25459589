package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// ComplaintPatch carries the fields of a partial update. Nil fields are left untouched.
type ComplaintPatch struct {
	Customer      *string
	TerminalID    *string
	TransactionAt *time.Time
	ReceivedAt    *time.Time
	ComplaintType *string
	Severity      *domain.Severity
	Verification  *domain.Verification
	Status        *domain.ComplaintStatus
}

// Empty reports whether the patch changes nothing.
func (p ComplaintPatch) Empty() bool {
	return p.Customer == nil && p.TerminalID == nil && p.TransactionAt == nil && p.ReceivedAt == nil &&
		p.ComplaintType == nil && p.Severity == nil && p.Verification == nil && p.Status == nil
}

// ComplaintRepository encapsulates complaint persistence. Reads return complaints with
// their comments loaded in insertion order.
type ComplaintRepository interface {
	List(ctx context.Context) ([]domain.Complaint, error)
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, id string, patch ComplaintPatch) error
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, no_tiket, nasabah, terminal_id, waktu_trx, waktu_aduan, jenis_aduan,
               severity, pengecekan, status, created_at, updated_at`

func (r *complaintRepository) List(ctx context.Context) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY waktu_aduan DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	complaints, err := scanComplaints(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(complaints) == 0 {
		return complaints, nil
	}

	ids := make([]string, len(complaints))
	for i := range complaints {
		ids[i] = complaints[i].ID
	}
	comments, err := listCommentsFor(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range complaints {
		complaints[i].Comments = comments[complaints[i].ID]
		if complaints[i].Comments == nil {
			complaints[i].Comments = []domain.Comment{}
		}
	}
	return complaints, nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	var c domain.Complaint
	if err := scanComplaint(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		return nil, err
	}
	comments, err := listCommentsFor(ctx, r.pool, []string{c.ID})
	if err != nil {
		return nil, err
	}
	c.Comments = comments[c.ID]
	if c.Comments == nil {
		c.Comments = []domain.Comment{}
	}
	return &c, nil
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (no_tiket, nasabah, terminal_id, waktu_trx, waktu_aduan, jenis_aduan, severity, pengecekan, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		complaint.TicketNumber,
		complaint.Customer,
		complaint.TerminalID,
		complaint.TransactionAt,
		complaint.ReceivedAt,
		complaint.ComplaintType,
		complaint.Severity,
		complaint.Verification,
		complaint.Status,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt); err != nil {
		return err
	}
	complaint.Comments = []domain.Comment{}
	return nil
}

func (r *complaintRepository) Update(ctx context.Context, id string, patch ComplaintPatch) error {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Customer != nil {
		add("nasabah", *patch.Customer)
	}
	if patch.TerminalID != nil {
		add("terminal_id", *patch.TerminalID)
	}
	if patch.TransactionAt != nil {
		add("waktu_trx", *patch.TransactionAt)
	}
	if patch.ReceivedAt != nil {
		add("waktu_aduan", *patch.ReceivedAt)
	}
	if patch.ComplaintType != nil {
		add("jenis_aduan", *patch.ComplaintType)
	}
	if patch.Severity != nil {
		add("severity", *patch.Severity)
	}
	if patch.Verification != nil {
		add("pengecekan", *patch.Verification)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE complaints SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanComplaint(row pgx.Row, c *domain.Complaint) error {
	return row.Scan(
		&c.ID,
		&c.TicketNumber,
		&c.Customer,
		&c.TerminalID,
		&c.TransactionAt,
		&c.ReceivedAt,
		&c.ComplaintType,
		&c.Severity,
		&c.Verification,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		var c domain.Complaint
		if err := scanComplaint(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
