package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
)

// IncidentsPageSize is the number of active incidents per dashboard page.
const IncidentsPageSize = 5

// latestBucketSize caps the PROBLEM_TERBARU tab.
const latestBucketSize = 10

// BucketKey names a dashboard tab.
type BucketKey string

const (
	BucketLatest    BucketKey = "PROBLEM_TERBARU"
	BucketJarkom    BucketKey = "JARKOM"
	BucketFLM       BucketKey = "FLM"
	BucketSLM       BucketKey = "SLM"
	BucketAMS       BucketKey = "AMS"
	BucketReplenish BucketKey = "REQ_REPLENISH"
	BucketLocation  BucketKey = "LOKASI"
)

// BucketOrder is the tab order of the dashboard.
var BucketOrder = []BucketKey{BucketLatest, BucketJarkom, BucketFLM, BucketSLM, BucketAMS, BucketReplenish, BucketLocation}

var bucketKeywords = map[BucketKey][]string{
	BucketJarkom:    {"jaringan", "network", "komunikasi", "communication", "signal", "rto", "host", "offline"},
	BucketFLM:       {"cash", "uang", "kartu", "printer", "struk", "paper", "cassette"},
	BucketSLM:       {"reader", "dispenser", "hardware", "sparepart", "layar"},
	BucketAMS:       {"maintenance", "host down", "system"},
	BucketReplenish: {"replenish", "habis", "empty", "cash out"},
	BucketLocation:  {"listrik", "power", "lokasi", "padam"},
}

// Tone classifies a complaint type for badge colouring.
type Tone string

const (
	ToneCritical Tone = "critical"
	ToneHardware Tone = "hardware"
	ToneCash     Tone = "cash"
	ToneNeutral  Tone = "neutral"
)

var toneKeywords = []struct {
	tone     Tone
	keywords []string
}{
	{ToneCritical, []string{"host", "down", "communication", "power", "offline"}},
	{ToneHardware, []string{"printer", "hardware", "reader", "kartu"}},
	{ToneCash, []string{"cash", "full", "uang"}},
}

// ToneOf returns the badge tone of a complaint type.
func ToneOf(complaintType string) Tone {
	t := strings.ToLower(complaintType)
	for _, group := range toneKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(t, kw) {
				return group.tone
			}
		}
	}
	return ToneNeutral
}

// MatchesBucket reports whether a complaint type belongs to a keyword tab.
func MatchesBucket(key BucketKey, complaintType string) bool {
	t := strings.ToLower(complaintType)
	for _, kw := range bucketKeywords[key] {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// LocationIndex lists terminal sites so dashboard rows can show where a terminal is.
type LocationIndex interface {
	List(ctx context.Context, search string) ([]domain.Location, error)
}

// DashboardService aggregates active complaints for the monitoring dashboard.
type DashboardService struct {
	complaints repository.ComplaintRepository
	locations  LocationIndex
	logger     *zap.Logger
	now        func() time.Time
}

// DashboardDependencies bundles collaborators for the dashboard.
type DashboardDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Locations     LocationIndex
	Logger        *zap.Logger
	Now           func() time.Time
}

// IncidentFilter narrows the active incident table.
type IncidentFilter struct {
	Search   string
	Severity domain.Severity
	Page     int
}

// IncidentRow is one active complaint with site details when the terminal is known.
type IncidentRow struct {
	Complaint    domain.Complaint
	Downtime     string
	LocationName string
	FLM          string
	SLM          string
}

// IncidentPage is one page of active incidents.
type IncidentPage struct {
	Items      []IncidentRow
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// BucketRow is one complaint inside a dashboard tab.
type BucketRow struct {
	IncidentRow
	Tone Tone
}

// Bucket is one dashboard tab.
type Bucket struct {
	Key  BucketKey
	Rows []BucketRow
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = systemClock
	}
	return &DashboardService{complaints: deps.ComplaintRepo, locations: deps.Locations, logger: logger, now: now}
}

// ActiveIncidents returns a page of non-closed complaints, newest first.
func (s *DashboardService) ActiveIncidents(ctx context.Context, filter IncidentFilter) (*IncidentPage, error) {
	rows, err := s.activeRows(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]IncidentRow, 0, len(rows))
	for _, row := range rows {
		if filter.Severity != "" && row.Complaint.Severity != filter.Severity {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.Complaint.TerminalID), search) &&
			!strings.Contains(strings.ToLower(row.Complaint.Customer), search) &&
			!strings.Contains(strings.ToLower(row.LocationName), search) {
			continue
		}
		matched = append(matched, row)
	}

	totalPages := (len(matched) + IncidentsPageSize - 1) / IncidentsPageSize
	page := filter.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * IncidentsPageSize
	end := start + IncidentsPageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return &IncidentPage{
		Items:      matched[start:end],
		Page:       page,
		PageSize:   IncidentsPageSize,
		TotalItems: len(matched),
		TotalPages: totalPages,
	}, nil
}

// Buckets sorts active complaints into the dashboard tabs. A complaint may appear in
// several tabs or none.
func (s *DashboardService) Buckets(ctx context.Context) ([]Bucket, error) {
	rows, err := s.activeRows(ctx)
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(BucketOrder))
	for _, key := range BucketOrder {
		bucket := Bucket{Key: key, Rows: []BucketRow{}}
		for _, row := range rows {
			if key == BucketLatest {
				if len(bucket.Rows) == latestBucketSize {
					break
				}
			} else if !MatchesBucket(key, row.Complaint.ComplaintType) {
				continue
			}
			bucket.Rows = append(bucket.Rows, BucketRow{IncidentRow: row, Tone: ToneOf(row.Complaint.ComplaintType)})
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

func (s *DashboardService) activeRows(ctx context.Context) ([]IncidentRow, error) {
	complaints, err := s.complaints.List(ctx)
	if err != nil {
		return nil, err
	}
	sites := s.siteIndex(ctx)
	now := s.now()

	rows := make([]IncidentRow, 0, len(complaints))
	for i := range complaints {
		c := complaints[i]
		if !c.IsActive() {
			continue
		}
		row := IncidentRow{Complaint: c, Downtime: c.Downtime(now)}
		if site, ok := sites[strings.ToLower(c.TerminalID)]; ok {
			row.LocationName = site.Name
			row.FLM = string(site.FLM)
			row.SLM = string(site.SLM)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *DashboardService) siteIndex(ctx context.Context) map[string]domain.Location {
	index := map[string]domain.Location{}
	if s.locations == nil {
		return index
	}
	locations, err := s.locations.List(ctx, "")
	if err != nil {
		s.logger.Warn("dashboard without location details", zap.Error(err))
		return index
	}
	for _, l := range locations {
		index[strings.ToLower(l.TerminalID)] = l
	}
	return index
}
