package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
)

// LocationRepository persists terminal sites.
type LocationRepository interface {
	List(ctx context.Context, search string) ([]domain.Location, error)
	Lookup(ctx context.Context, term string, limit int) ([]domain.Location, error)
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	Create(ctx context.Context, location *domain.Location) error
	CreateMany(ctx context.Context, locations []*domain.Location) error
	Update(ctx context.Context, location *domain.Location) error
	Delete(ctx context.Context, id string) error
	TerminalCodeExists(ctx context.Context, code string) (bool, error)
	TerminalIDs(ctx context.Context) ([]string, error)
}

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository constructs repository.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &locationRepository{pool: pool}
}

const locationColumns = `id, kode_terminal, terminal_id, tanggal_aktivasi, tanggal_relokasi, kode_toko, nama_lokasi,
               alamat, wilayah, provinsi, dc_toko, titik_kordinat, jam_buka, jam_tutup, total_jam_tutup,
               flm, slm, vendor_modem, nomor_modem, kebersihan, penempatan, jenis_box, tipe_mesin,
               sn_atm, vendor_ups, sn_ups, vendor_lcd, sn_lcd, flag_aktif, created_at, updated_at`

const insertLocation = `
        INSERT INTO locations (kode_terminal, terminal_id, tanggal_aktivasi, tanggal_relokasi, kode_toko, nama_lokasi,
            alamat, wilayah, provinsi, dc_toko, titik_kordinat, jam_buka, jam_tutup, total_jam_tutup,
            flm, slm, vendor_modem, nomor_modem, kebersihan, penempatan, jenis_box, tipe_mesin,
            sn_atm, vendor_ups, sn_ups, vendor_lcd, sn_lcd, flag_aktif)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)
        RETURNING id, created_at, updated_at`

func (r *locationRepository) List(ctx context.Context, search string) ([]domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	args := []any{}
	if search != "" {
		query += ` WHERE terminal_id ILIKE $1 ESCAPE '\' OR nama_lokasi ILIKE $1 ESCAPE '\' OR kode_terminal ILIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(search))
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *locationRepository) Lookup(ctx context.Context, term string, limit int) ([]domain.Location, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + locationColumns + ` FROM locations
        WHERE terminal_id ILIKE $1 ESCAPE '\' OR nama_lokasi ILIKE $1 ESCAPE '\'
        ORDER BY terminal_id ASC LIMIT $2`
	return r.query(ctx, query, containsPattern(term), limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into a literal substring pattern for ILIKE ... ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var l domain.Location
	if err := scanLocation(r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id=$1`, id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	return r.pool.QueryRow(ctx, insertLocation, locationArgs(location)...).
		Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt)
}

// CreateMany inserts every location in one transaction; any failure rolls back the batch.
func (r *locationRepository) CreateMany(ctx context.Context, locations []*domain.Location) error {
	if len(locations) == 0 {
		return nil
	}
	return persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, location := range locations {
			if err := tx.QueryRow(ctx, insertLocation, locationArgs(location)...).
				Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *locationRepository) Update(ctx context.Context, location *domain.Location) error {
	const query = `
        UPDATE locations SET kode_terminal=$1, terminal_id=$2, tanggal_aktivasi=$3, tanggal_relokasi=$4, kode_toko=$5,
            nama_lokasi=$6, alamat=$7, wilayah=$8, provinsi=$9, dc_toko=$10, titik_kordinat=$11, jam_buka=$12,
            jam_tutup=$13, total_jam_tutup=$14, flm=$15, slm=$16, vendor_modem=$17, nomor_modem=$18, kebersihan=$19,
            penempatan=$20, jenis_box=$21, tipe_mesin=$22, sn_atm=$23, vendor_ups=$24, sn_ups=$25, vendor_lcd=$26,
            sn_lcd=$27, flag_aktif=$28, updated_at=NOW()
        WHERE id=$29`
	args := append(locationArgs(location), location.ID)
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *locationRepository) TerminalCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE kode_terminal=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *locationRepository) TerminalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT terminal_id FROM locations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *locationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Location, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Location{}
	for rows.Next() {
		var l domain.Location
		if err := scanLocation(rows, &l); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func locationArgs(l *domain.Location) []any {
	return []any{
		l.TerminalCode, l.TerminalID, l.ActivatedOn, l.RelocatedOn, l.StoreCode, l.Name,
		l.Address, l.Region, l.Province, l.StoreDC, l.Coordinates, l.OpensAt, l.ClosesAt, l.ClosedHours,
		l.FLM, l.SLM, l.ModemVendor, l.ModemNumber, l.Cleanliness, l.Placement, l.BoxType, l.MachineType,
		l.ATMSerial, l.UPSVendor, l.UPSSerial, l.LCDVendor, l.LCDSerial, l.Active,
	}
}

func scanLocation(row pgx.Row, l *domain.Location) error {
	return row.Scan(
		&l.ID, &l.TerminalCode, &l.TerminalID, &l.ActivatedOn, &l.RelocatedOn, &l.StoreCode, &l.Name,
		&l.Address, &l.Region, &l.Province, &l.StoreDC, &l.Coordinates, &l.OpensAt, &l.ClosesAt, &l.ClosedHours,
		&l.FLM, &l.SLM, &l.ModemVendor, &l.ModemNumber, &l.Cleanliness, &l.Placement, &l.BoxType, &l.MachineType,
		&l.ATMSerial, &l.UPSVendor, &l.UPSSerial, &l.LCDVendor, &l.LCDSerial, &l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
}
