package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FLM names the first-line maintenance vendor of a terminal.
type FLM string

const (
	FLMAdvantage FLM = "ADVANTAGE"
	FLMBrinksAMS FLM = "BRINKS-AMS"
	FLMBrinksICS FLM = "BRINKS-ICS"
	FLMKejar     FLM = "KEJAR"
)

// SLM names the second-line maintenance vendor of a terminal.
type SLM string

const (
	SLMDN      SLM = "DN"
	SLMDatindo SLM = "DATINDO"
)

// Placement names the retail chain hosting a terminal.
type Placement string

const (
	PlacementIndomaret Placement = "INDOMARET"
	PlacementAlfamart  Placement = "ALFAMART"
	PlacementAlfamidi  Placement = "ALFAMIDI"
)

// TerminalCodePrefix prefixes generated internal terminal codes.
const TerminalCodePrefix = "RND"

// Location describes an installed terminal and its site.
type Location struct {
	ID           string
	TerminalCode string
	TerminalID   string
	ActivatedOn  string
	RelocatedOn  string
	StoreCode    string
	Name         string
	Address      string
	Region       string
	Province     string
	StoreDC      string
	Coordinates  string
	OpensAt      string
	ClosesAt     string
	ClosedHours  float64
	FLM          FLM
	SLM          SLM
	ModemVendor  string
	ModemNumber  string
	Cleanliness  string
	Placement    Placement
	BoxType      string
	MachineType  string
	ATMSerial    string
	UPSVendor    string
	UPSSerial    string
	LCDVendor    string
	LCDSerial    string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Valid reports whether the vendor is known.
func (f FLM) Valid() bool {
	switch f {
	case FLMAdvantage, FLMBrinksAMS, FLMBrinksICS, FLMKejar:
		return true
	}
	return false
}

// Valid reports whether the vendor is known.
func (s SLM) Valid() bool {
	return s == SLMDN || s == SLMDatindo
}

// Valid reports whether the placement is known.
func (p Placement) Valid() bool {
	switch p {
	case PlacementIndomaret, PlacementAlfamart, PlacementAlfamidi:
		return true
	}
	return false
}

// ClosedHours returns how many hours per day a site is closed given its opening hours
// in HH:MM form. Hours that wrap past midnight are supported. The result is rounded to
// two decimals; an empty or malformed time yields 0.
func ClosedHours(opensAt, closesAt string) float64 {
	open, ok := minutesOfDay(opensAt)
	if !ok {
		return 0
	}
	closeAt, ok := minutesOfDay(closesAt)
	if !ok {
		return 0
	}
	diff := closeAt - open
	if diff < 0 {
		diff += 24 * 60
	}
	hoursOpen := float64(diff) / 60
	return math.Round((24-hoursOpen)*100) / 100
}

func minutesOfDay(hhmm string) (int, bool) {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return 0, false
	}
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// MatchesLookup reports whether the terminal id or site name contains the term, ignoring case.
func (l *Location) MatchesLookup(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.TerminalID), term) ||
		strings.Contains(strings.ToLower(l.Name), term)
}
