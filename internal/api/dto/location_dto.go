package dto

import (
	"time"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// LocationRequest is the location form. On update empty fields keep their value.
type LocationRequest struct {
	TerminalID  string `json:"terminal_id" validate:"max=64"`
	ActivatedOn string `json:"tanggal_aktivasi"`
	RelocatedOn string `json:"tanggal_relokasi"`
	StoreCode   string `json:"kode_toko"`
	Name        string `json:"nama_lokasi" validate:"max=200"`
	Address     string `json:"alamat"`
	Region      string `json:"wilayah"`
	Province    string `json:"provinsi"`
	StoreDC     string `json:"dc_toko"`
	Coordinates string `json:"titik_kordinat"`
	OpensAt     string `json:"jam_buka"`
	ClosesAt    string `json:"jam_tutup"`
	FLM         string `json:"flm" validate:"omitempty,oneof=ADVANTAGE BRINKS-AMS BRINKS-ICS KEJAR"`
	SLM         string `json:"slm" validate:"omitempty,oneof=DN DATINDO"`
	ModemVendor string `json:"vendor_modem"`
	ModemNumber string `json:"nomor_modem"`
	Cleanliness string `json:"kebersihan"`
	Placement   string `json:"penempatan" validate:"omitempty,oneof=INDOMARET ALFAMART ALFAMIDI"`
	BoxType     string `json:"jenis_box"`
	MachineType string `json:"tipe_mesin"`
	ATMSerial   string `json:"sn_atm"`
	UPSVendor   string `json:"vendor_ups"`
	UPSSerial   string `json:"sn_ups"`
	LCDVendor   string `json:"vendor_lcd"`
	LCDSerial   string `json:"sn_lcd"`
	Active      *bool  `json:"flag_aktif"`
}

// LocationResponse is one terminal site.
type LocationResponse struct {
	ID           string           `json:"id"`
	TerminalCode string           `json:"kode_terminal"`
	TerminalID   string           `json:"terminal_id"`
	ActivatedOn  string           `json:"tanggal_aktivasi"`
	RelocatedOn  string           `json:"tanggal_relokasi"`
	StoreCode    string           `json:"kode_toko"`
	Name         string           `json:"nama_lokasi"`
	Address      string           `json:"alamat"`
	Region       string           `json:"wilayah"`
	Province     string           `json:"provinsi"`
	StoreDC      string           `json:"dc_toko"`
	Coordinates  string           `json:"titik_kordinat"`
	OpensAt      string           `json:"jam_buka"`
	ClosesAt     string           `json:"jam_tutup"`
	ClosedHours  float64          `json:"total_jam_tutup"`
	FLM          domain.FLM       `json:"flm"`
	SLM          domain.SLM       `json:"slm"`
	ModemVendor  string           `json:"vendor_modem"`
	ModemNumber  string           `json:"nomor_modem"`
	Cleanliness  string           `json:"kebersihan"`
	Placement    domain.Placement `json:"penempatan"`
	BoxType      string           `json:"jenis_box"`
	MachineType  string           `json:"tipe_mesin"`
	ATMSerial    string           `json:"sn_atm"`
	UPSVendor    string           `json:"vendor_ups"`
	UPSSerial    string           `json:"sn_ups"`
	LCDVendor    string           `json:"vendor_lcd"`
	LCDSerial    string           `json:"sn_lcd"`
	Active       bool             `json:"flag_aktif"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewLocationResponse maps a domain location.
func NewLocationResponse(l *domain.Location) LocationResponse {
	return LocationResponse{
		ID:           l.ID,
		TerminalCode: l.TerminalCode,
		TerminalID:   l.TerminalID,
		ActivatedOn:  l.ActivatedOn,
		RelocatedOn:  l.RelocatedOn,
		StoreCode:    l.StoreCode,
		Name:         l.Name,
		Address:      l.Address,
		Region:       l.Region,
		Province:     l.Province,
		StoreDC:      l.StoreDC,
		Coordinates:  l.Coordinates,
		OpensAt:      l.OpensAt,
		ClosesAt:     l.ClosesAt,
		ClosedHours:  l.ClosedHours,
		FLM:          l.FLM,
		SLM:          l.SLM,
		ModemVendor:  l.ModemVendor,
		ModemNumber:  l.ModemNumber,
		Cleanliness:  l.Cleanliness,
		Placement:    l.Placement,
		BoxType:      l.BoxType,
		MachineType:  l.MachineType,
		ATMSerial:    l.ATMSerial,
		UPSVendor:    l.UPSVendor,
		UPSSerial:    l.UPSSerial,
		LCDVendor:    l.LCDVendor,
		LCDSerial:    l.LCDSerial,
		Active:       l.Active,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ImportResponse reports a CSV import.
type ImportResponse struct {
	Success int      `json:"success"`
	Skipped []string `json:"skipped"`
}

// MasterItemRequest is the master data form. Code is honoured only on create.
type MasterItemRequest struct {
	Code        string `json:"code" validate:"max=32"`
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// MasterItemResponse is one reference row.
type MasterItemResponse struct {
	ID          string            `json:"id"`
	Type        domain.MasterType `json:"type"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewMasterItemResponse maps a domain item.
func NewMasterItemResponse(item *domain.MasterItem) MasterItemResponse {
	return MasterItemResponse{
		ID:          item.ID,
		Type:        item.Type,
		Code:        item.Code,
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
