package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const (
	locationImportTarget = "Data Lokasi"
	unknownLocationName  = "Nama Tidak Diketahui"

	// LocationTemplateFilename names the downloadable import template.
	LocationTemplateFilename = "template_import_lokasi.csv"
)

// locationCSVColumns is the column order shared by import, template and export.
var locationCSVColumns = []string{
	"terminal_id", "tanggal_aktivasi", "tanggal_relokasi", "kode_toko", "nama_lokasi", "alamat",
	"wilayah", "provinsi", "dc_toko", "titik_kordinat", "jam_buka", "jam_tutup", "flm", "slm",
	"vendor_modem", "nomor_modem", "kebersihan", "penempatan", "jenis_box", "tipe_mesin",
	"sn_atm", "vendor_ups", "sn_ups", "vendor_lcd", "sn_lcd",
}

var locationTemplateExample = []string{
	"TID-99999", "20250101", "20250201", "TKO-888", "Contoh Lokasi", "Jl. Contoh No 1",
	"Jakarta Pusat", "DKI Jakarta", "DC JAKARTA", "-6.123, 106.123", "07:00", "22:00", "ADVANTAGE", "DN",
	"Telkomsel", "081234567890", "Bersih", "INDOMARET", "Standard", "NCR",
	"SN-ATM-001", "ICA", "SN-UPS-001", "Samsung", "SN-LCD-001",
}

// LocationService manages terminal sites and their CSV exchange.
type LocationService struct {
	locations repository.LocationRepository
	activity  ActivityRecorder
	now       func() time.Time
}

// LocationInput carries the editable fields of a location. On update, empty strings and
// a nil Active keep the stored value.
type LocationInput struct {
	TerminalID  string
	ActivatedOn string
	RelocatedOn string
	StoreCode   string
	Name        string
	Address     string
	Region      string
	Province    string
	StoreDC     string
	Coordinates string
	OpensAt     string
	ClosesAt    string
	FLM         domain.FLM
	SLM         domain.SLM
	ModemVendor string
	ModemNumber string
	Cleanliness string
	Placement   domain.Placement
	BoxType     string
	MachineType string
	ATMSerial   string
	UPSVendor   string
	UPSSerial   string
	LCDVendor   string
	LCDSerial   string
	Active      *bool
}

// ImportResult reports a CSV import. Skipped entries read "{terminal_id} - {nama_lokasi}".
type ImportResult struct {
	Success int
	Skipped []string
}

// NewLocationService constructs the service.
func NewLocationService(locations repository.LocationRepository, activity ActivityRecorder) *LocationService {
	return &LocationService{locations: locations, activity: activity, now: systemClock}
}

// List returns locations newest first, optionally filtered by terminal id, code or name.
func (s *LocationService) List(ctx context.Context, search string) ([]domain.Location, error) {
	return s.locations.List(ctx, strings.TrimSpace(search))
}

// Lookup serves terminal type-ahead queries.
func (s *LocationService) Lookup(ctx context.Context, term string, limit int) ([]domain.Location, error) {
	return s.locations.Lookup(ctx, strings.TrimSpace(term), limit)
}

// Get returns one location.
func (s *LocationService) Get(ctx context.Context, id string) (*domain.Location, error) {
	if !isID(id) {
		return nil, apperrors.NewNotFound("location", map[string]any{"id": id})
	}
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("location", map[string]any{"id": id})
		}
		return nil, err
	}
	return location, nil
}

// Create stores a new location with a generated terminal code.
func (s *LocationService) Create(ctx context.Context, actor domain.Actor, input LocationInput) (*domain.Location, error) {
	location := newLocation(input)
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	code, err := s.terminalCode(ctx, nil)
	if err != nil {
		return nil, err
	}
	location.TerminalCode = code

	if err := s.locations.Create(ctx, location); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionCreate, "Location: "+location.TerminalID,
		"Created new location "+location.Name)
	return location, nil
}

// Update merges input over the stored location. The terminal code never changes.
func (s *LocationService) Update(ctx context.Context, actor domain.Actor, id string, input LocationInput) (*domain.Location, error) {
	location, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mergeLocation(location, input)
	location.ClosedHours = domain.ClosedHours(location.OpensAt, location.ClosesAt)
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	if err := s.locations.Update(ctx, location); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("location", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionUpdate, "Location: "+location.TerminalID,
		"Updated location "+location.Name)
	return location, nil
}

// Delete removes a location.
func (s *LocationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	location, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.locations.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	record(ctx, s.activity, actor, domain.ActionDelete, "Location: "+location.TerminalID,
		"Deleted location "+location.Name)
	return nil
}

// Import reads a CSV in template column order. The header row is skipped, blank lines are
// ignored and terminal ids already stored or repeated in the file are reported as skipped.
func (s *LocationService) Import(ctx context.Context, actor domain.Actor, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	existingIDs, err := s.locations.TerminalIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		seen[strings.ToLower(strings.TrimSpace(id))] = true
	}

	result := &ImportResult{Skipped: []string{}}
	batch := []*domain.Location{}
	codes := map[string]bool{}
	header := true

	for {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable CSV file", map[string]any{"error": err.Error()})
		}
		if header {
			header = false
			continue
		}
		location, ok := locationFromCSV(cols)
		if !ok {
			continue
		}

		key := strings.ToLower(location.TerminalID)
		if seen[key] {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s - %s", location.TerminalID, location.Name))
			continue
		}
		seen[key] = true

		code, err := s.terminalCode(ctx, codes)
		if err != nil {
			return nil, err
		}
		codes[code] = true
		location.TerminalCode = code
		batch = append(batch, location)
	}

	if err := s.locations.CreateMany(ctx, batch); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	result.Success = len(batch)
	record(ctx, s.activity, actor, domain.ActionImport, locationImportTarget,
		fmt.Sprintf("Imported %d records. Skipped %d.", result.Success, len(result.Skipped)))
	return result, nil
}

// WriteTemplate writes the import header and one quoted example row.
func (s *LocationService) WriteTemplate(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(locationCSVColumns, ",")+"\n"+quoteCSVRow(locationTemplateExample))
	return err
}

// Export writes every location in template column order with all values quoted and
// returns the download filename.
func (s *LocationService) Export(ctx context.Context, actor domain.Actor, w io.Writer) (string, error) {
	locations, err := s.locations.List(ctx, "")
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(locations)+1)
	lines = append(lines, strings.Join(locationCSVColumns, ","))
	for i := range locations {
		lines = append(lines, quoteCSVRow(locationCSVValues(&locations[i])))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return "", err
	}

	record(ctx, s.activity, actor, domain.ActionExport, locationImportTarget, "Exported full location database to CSV")
	return fmt.Sprintf("data_lokasi_export_%s.csv", s.now().Format("2006-01-02")), nil
}

func (s *LocationService) terminalCode(ctx context.Context, reserved map[string]bool) (string, error) {
	return generateCode(domain.TerminalCodePrefix, func(code string) (bool, error) {
		if reserved[code] {
			return true, nil
		}
		return s.locations.TerminalCodeExists(ctx, code)
	})
}

func newLocation(input LocationInput) *domain.Location {
	location := &domain.Location{Active: true}
	if input.Active != nil {
		location.Active = *input.Active
	}
	mergeLocation(location, input)
	applyLocationDefaults(location)
	return location
}

func mergeLocation(l *domain.Location, in LocationInput) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&l.TerminalID, in.TerminalID)
	set(&l.ActivatedOn, in.ActivatedOn)
	set(&l.RelocatedOn, in.RelocatedOn)
	set(&l.StoreCode, in.StoreCode)
	set(&l.Name, in.Name)
	set(&l.Address, in.Address)
	set(&l.Region, in.Region)
	set(&l.Province, in.Province)
	set(&l.StoreDC, in.StoreDC)
	set(&l.Coordinates, in.Coordinates)
	set(&l.OpensAt, in.OpensAt)
	set(&l.ClosesAt, in.ClosesAt)
	set(&l.ModemVendor, in.ModemVendor)
	set(&l.ModemNumber, in.ModemNumber)
	set(&l.Cleanliness, in.Cleanliness)
	set(&l.BoxType, in.BoxType)
	set(&l.MachineType, in.MachineType)
	set(&l.ATMSerial, in.ATMSerial)
	set(&l.UPSVendor, in.UPSVendor)
	set(&l.UPSSerial, in.UPSSerial)
	set(&l.LCDVendor, in.LCDVendor)
	set(&l.LCDSerial, in.LCDSerial)
	if in.FLM != "" {
		l.FLM = domain.FLM(strings.ToUpper(strings.TrimSpace(string(in.FLM))))
	}
	if in.SLM != "" {
		l.SLM = domain.SLM(strings.ToUpper(strings.TrimSpace(string(in.SLM))))
	}
	if in.Placement != "" {
		l.Placement = domain.Placement(strings.ToUpper(strings.TrimSpace(string(in.Placement))))
	}
	if in.Active != nil {
		l.Active = *in.Active
	}
}

func applyLocationDefaults(l *domain.Location) {
	def := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	def(&l.ActivatedOn, "-")
	def(&l.RelocatedOn, "-")
	def(&l.StoreCode, "-")
	def(&l.Address, "-")
	def(&l.Region, "-")
	def(&l.Province, "-")
	def(&l.StoreDC, "-")
	def(&l.OpensAt, "00:00")
	def(&l.ClosesAt, "23:59")
	def(&l.ModemVendor, "-")
	def(&l.ModemNumber, "-")
	def(&l.Cleanliness, "-")
	def(&l.BoxType, "Standard")
	def(&l.MachineType, "ATM")
	def(&l.ATMSerial, "-")
	def(&l.UPSVendor, "-")
	def(&l.UPSSerial, "-")
	def(&l.LCDVendor, "-")
	def(&l.LCDSerial, "-")
	if l.FLM == "" {
		l.FLM = domain.FLMAdvantage
	}
	if l.SLM == "" {
		l.SLM = domain.SLMDN
	}
	if l.Placement == "" {
		l.Placement = domain.PlacementIndomaret
	}
	l.ClosedHours = domain.ClosedHours(l.OpensAt, l.ClosesAt)
}

func validateLocation(l *domain.Location) error {
	details := map[string]any{}
	if l.TerminalID == "" {
		details["terminal_id"] = "required"
	}
	if l.Name == "" {
		details["nama_lokasi"] = "required"
	}
	if !l.FLM.Valid() {
		details["flm"] = "must be one of ADVANTAGE, BRINKS-AMS, BRINKS-ICS, KEJAR"
	}
	if !l.SLM.Valid() {
		details["slm"] = "must be one of DN, DATINDO"
	}
	if !l.Placement.Valid() {
		details["penempatan"] = "must be one of INDOMARET, ALFAMART, ALFAMIDI"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid location", details)
	}
	return nil
}

// locationFromCSV maps one data row. Rows without a terminal id are ignored.
func locationFromCSV(cols []string) (*domain.Location, bool) {
	col := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	if col(0) == "" {
		return nil, false
	}

	location := newLocation(LocationInput{
		TerminalID:  col(0),
		ActivatedOn: col(1),
		RelocatedOn: col(2),
		StoreCode:   col(3),
		Name:        col(4),
		Address:     col(5),
		Region:      col(6),
		Province:    col(7),
		StoreDC:     col(8),
		Coordinates: col(9),
		OpensAt:     col(10),
		ClosesAt:    col(11),
		FLM:         domain.FLM(col(12)),
		SLM:         domain.SLM(col(13)),
		ModemVendor: col(14),
		ModemNumber: col(15),
		Cleanliness: col(16),
		Placement:   domain.Placement(col(17)),
		BoxType:     col(18),
		MachineType: col(19),
		ATMSerial:   col(20),
		UPSVendor:   col(21),
		UPSSerial:   col(22),
		LCDVendor:   col(23),
		LCDSerial:   col(24),
	})
	if location.Name == "" {
		location.Name = unknownLocationName
	}
	if !location.FLM.Valid() {
		location.FLM = domain.FLMAdvantage
	}
	if !location.SLM.Valid() {
		location.SLM = domain.SLMDN
	}
	if !location.Placement.Valid() {
		location.Placement = domain.PlacementIndomaret
	}
	return location, true
}

func locationCSVValues(l *domain.Location) []string {
	return []string{
		l.TerminalID, l.ActivatedOn, l.RelocatedOn, l.StoreCode, l.Name, l.Address,
		l.Region, l.Province, l.StoreDC, l.Coordinates, l.OpensAt, l.ClosesAt, string(l.FLM), string(l.SLM),
		l.ModemVendor, l.ModemNumber, l.Cleanliness, string(l.Placement), l.BoxType, l.MachineType,
		l.ATMSerial, l.UPSVendor, l.UPSSerial, l.LCDVendor, l.LCDSerial,
	}
}

// quoteCSVRow quotes every value, doubling embedded quotes.
func quoteCSVRow(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
