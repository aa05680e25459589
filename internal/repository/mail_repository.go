package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// MailRepository persists internal mail. Per-user flags live in the read_by, starred_by
// and deleted_by arrays.
type MailRepository interface {
	Create(ctx context.Context, mail *domain.Mail) error
	Save(ctx context.Context, mail *domain.Mail) error
	GetByID(ctx context.Context, id string) (*domain.Mail, error)
	ListInvolving(ctx context.Context, userID string) ([]domain.Mail, error)
}

type mailRepository struct {
	pool *pgxpool.Pool
}

// NewMailRepository constructs repository.
func NewMailRepository(pool *pgxpool.Pool) MailRepository {
	return &mailRepository{pool: pool}
}

const mailColumns = `id, sender_id, sender_name, sender_email, sender_avatar, recipients, cc, subject, content,
               attachments, read_by, starred_by, deleted_by, is_draft, timestamp`

func (r *mailRepository) Create(ctx context.Context, mail *domain.Mail) error {
	normalizeMail(mail)
	const query = `
        INSERT INTO mails (sender_id, sender_name, sender_email, sender_avatar, recipients, cc, subject, content,
            attachments, read_by, starred_by, deleted_by, is_draft)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		mail.SenderID,
		mail.SenderName,
		mail.SenderEmail,
		mail.SenderAvatar,
		mail.Recipients,
		mail.CC,
		mail.Subject,
		mail.Content,
		mail.Attachments,
		mail.ReadBy,
		mail.StarredBy,
		mail.DeletedBy,
		mail.IsDraft,
	).Scan(&mail.ID, &mail.Timestamp)
}

// Save overwrites every mutable column of an existing mail.
func (r *mailRepository) Save(ctx context.Context, mail *domain.Mail) error {
	normalizeMail(mail)
	const query = `
        UPDATE mails SET recipients=$1, cc=$2, subject=$3, content=$4, attachments=$5, read_by=$6,
            starred_by=$7, deleted_by=$8, is_draft=$9, timestamp=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		mail.Recipients,
		mail.CC,
		mail.Subject,
		mail.Content,
		mail.Attachments,
		mail.ReadBy,
		mail.StarredBy,
		mail.DeletedBy,
		mail.IsDraft,
		mail.Timestamp,
		mail.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *mailRepository) GetByID(ctx context.Context, id string) (*domain.Mail, error) {
	var mail domain.Mail
	if err := scanMail(r.pool.QueryRow(ctx, `SELECT `+mailColumns+` FROM mails WHERE id=$1`, id), &mail); err != nil {
		return nil, err
	}
	return &mail, nil
}

func (r *mailRepository) ListInvolving(ctx context.Context, userID string) ([]domain.Mail, error) {
	query := `SELECT ` + mailColumns + ` FROM mails
        WHERE sender_id = $1
           OR recipients @> jsonb_build_array(jsonb_build_object('id', $1::text))
           OR cc @> jsonb_build_array(jsonb_build_object('id', $1::text))
        ORDER BY timestamp DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mails := []domain.Mail{}
	for rows.Next() {
		var mail domain.Mail
		if err := scanMail(rows, &mail); err != nil {
			return nil, err
		}
		mails = append(mails, mail)
	}
	return mails, rows.Err()
}

func scanMail(row pgx.Row, mail *domain.Mail) error {
	if err := row.Scan(
		&mail.ID,
		&mail.SenderID,
		&mail.SenderName,
		&mail.SenderEmail,
		&mail.SenderAvatar,
		&mail.Recipients,
		&mail.CC,
		&mail.Subject,
		&mail.Content,
		&mail.Attachments,
		&mail.ReadBy,
		&mail.StarredBy,
		&mail.DeletedBy,
		&mail.IsDraft,
		&mail.Timestamp,
	); err != nil {
		return err
	}
	normalizeMail(mail)
	return nil
}

func normalizeMail(mail *domain.Mail) {
	if mail.Recipients == nil {
		mail.Recipients = []domain.MailParty{}
	}
	if mail.CC == nil {
		mail.CC = []domain.MailParty{}
	}
	if mail.Attachments == nil {
		mail.Attachments = []domain.MailAttachment{}
	}
	if mail.ReadBy == nil {
		mail.ReadBy = []string{}
	}
	if mail.StarredBy == nil {
		mail.StarredBy = []string{}
	}
	if mail.DeletedBy == nil {
		mail.DeletedBy = []string{}
	}
}
