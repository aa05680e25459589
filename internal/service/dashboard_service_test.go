package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

func seedComplaints(repo *fakeComplaintRepo, now time.Time, complaints ...domain.Complaint) {
	for i := range complaints {
		c := complaints[i]
		c.ReceivedAt = now.Add(-time.Duration(len(complaints)-i) * time.Hour)
		_ = repo.Create(context.Background(), &c)
	}
}

func TestToneOf(t *testing.T) {
	tests := map[string]Tone{
		"ATM Offline":       ToneCritical,
		"Host Down":         ToneCritical,
		"Kartu Tertelan":    ToneHardware,
		"Printer error":     ToneHardware,
		"Uang Tidak Keluar": ToneCash,
		"Selisih Transaksi": ToneNeutral,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ToneOf(in))
		})
	}
}

func TestDashboardService_Buckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeComplaintRepo(newFakeCommentRepo())
	seedComplaints(repo, now,
		domain.Complaint{TerminalID: "TID-1", ComplaintType: "ATM Offline", Status: domain.ComplaintStatusOpen},
		domain.Complaint{TerminalID: "TID-2", ComplaintType: "Kartu Tertelan", Status: domain.ComplaintStatusHold},
		domain.Complaint{TerminalID: "TID-3", ComplaintType: "Listrik padam", Status: domain.ComplaintStatusInProgress},
		domain.Complaint{TerminalID: "TID-4", ComplaintType: "ATM Offline", Status: domain.ComplaintStatusClosed},
	)
	svc := NewDashboardService(DashboardDependencies{
		ComplaintRepo: repo,
		Locations: &fakeLocationRepo{items: []*domain.Location{
			{TerminalID: "tid-1", Name: "Indomaret Sudirman", FLM: domain.FLMKejar, SLM: domain.SLMDatindo},
		}},
		Now: func() time.Time { return now },
	})

	buckets, err := svc.Buckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, len(BucketOrder))

	byKey := map[BucketKey]Bucket{}
	for i, b := range buckets {
		assert.Equal(t, BucketOrder[i], b.Key)
		byKey[b.Key] = b
	}

	latest := byKey[BucketLatest].Rows
	require.Len(t, latest, 3)
	assert.Equal(t, "TID-3", latest[0].Complaint.TerminalID)

	jarkom := byKey[BucketJarkom].Rows
	require.Len(t, jarkom, 1)
	assert.Equal(t, "TID-1", jarkom[0].Complaint.TerminalID)
	assert.Equal(t, "Indomaret Sudirman", jarkom[0].LocationName)
	assert.Equal(t, "KEJAR", jarkom[0].FLM)
	assert.Equal(t, ToneCritical, jarkom[0].Tone)

	require.Len(t, byKey[BucketFLM].Rows, 1)
	assert.Equal(t, "TID-2", byKey[BucketFLM].Rows[0].Complaint.TerminalID)
	require.Len(t, byKey[BucketLocation].Rows, 1)
	assert.Empty(t, byKey[BucketReplenish].Rows)
}

func TestDashboardService_LatestBucketCapped(t *testing.T) {
	now := time.Now()
	repo := newFakeComplaintRepo(newFakeCommentRepo())
	var seeds []domain.Complaint
	for i := 0; i < 12; i++ {
		seeds = append(seeds, domain.Complaint{TerminalID: fmt.Sprintf("TID-%d", i), Status: domain.ComplaintStatusOpen})
	}
	seedComplaints(repo, now, seeds...)
	svc := NewDashboardService(DashboardDependencies{ComplaintRepo: repo})

	buckets, err := svc.Buckets(context.Background())
	require.NoError(t, err)
	assert.Len(t, buckets[0].Rows, latestBucketSize)
}

func TestDashboardService_ActiveIncidents(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeComplaintRepo(newFakeCommentRepo())
	var seeds []domain.Complaint
	for i := 0; i < 7; i++ {
		severity := domain.SeverityLow
		if i%2 == 0 {
			severity = domain.SeverityHigh
		}
		seeds = append(seeds, domain.Complaint{
			TerminalID: fmt.Sprintf("TID-%d", i),
			Customer:   fmt.Sprintf("Nasabah %d", i),
			Severity:   severity,
			Status:     domain.ComplaintStatusOpen,
		})
	}
	seeds = append(seeds, domain.Complaint{TerminalID: "TID-X", Status: domain.ComplaintStatusClosed, Severity: domain.SeverityHigh})
	seedComplaints(repo, now, seeds...)
	svc := NewDashboardService(DashboardDependencies{ComplaintRepo: repo, Now: func() time.Time { return now }})
	ctx := context.Background()

	first, err := svc.ActiveIncidents(ctx, IncidentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 7, first.TotalItems)
	assert.Equal(t, 2, first.TotalPages)
	assert.Len(t, first.Items, IncidentsPageSize)
	assert.Equal(t, "TID-6", first.Items[0].Complaint.TerminalID)

	beyond, err := svc.ActiveIncidents(ctx, IncidentFilter{Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, beyond.Page)
	assert.Len(t, beyond.Items, 2)

	high, err := svc.ActiveIncidents(ctx, IncidentFilter{Severity: domain.SeverityHigh})
	require.NoError(t, err)
	assert.Equal(t, 4, high.TotalItems)

	search, err := svc.ActiveIncidents(ctx, IncidentFilter{Search: "nasabah 3"})
	require.NoError(t, err)
	require.Equal(t, 1, search.TotalItems)
	assert.Equal(t, "TID-3", search.Items[0].Complaint.TerminalID)

	none, err := svc.ActiveIncidents(ctx, IncidentFilter{Search: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, 0, none.TotalPages)
	assert.Equal(t, 1, none.Page)
	assert.Empty(t, none.Items)
}
