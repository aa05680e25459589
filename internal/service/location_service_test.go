package service

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

var admin = domain.Actor{ID: "u-admin", Name: "Administrator", Role: string(domain.RoleSuperAdmin)}

var terminalCodePattern = regexp.MustCompile(`^RND-\d{4}$`)

func TestLocationService_CreateAppliesDefaults(t *testing.T) {
	repo := &fakeLocationRepo{}
	activity := &activitySpy{}
	svc := NewLocationService(repo, activity)

	got, err := svc.Create(context.Background(), admin, LocationInput{
		TerminalID: "TID-00123",
		Name:       "Indomaret Sudirman",
		OpensAt:    "07:00",
		ClosesAt:   "22:00",
	})
	require.NoError(t, err)

	assert.Regexp(t, terminalCodePattern, got.TerminalCode)
	assert.Equal(t, domain.FLMAdvantage, got.FLM)
	assert.Equal(t, domain.SLMDN, got.SLM)
	assert.Equal(t, domain.PlacementIndomaret, got.Placement)
	assert.Equal(t, "Standard", got.BoxType)
	assert.Equal(t, "ATM", got.MachineType)
	assert.Equal(t, "-", got.ModemVendor)
	assert.Equal(t, 9.0, got.ClosedHours)
	assert.True(t, got.Active)

	entry := activity.last()
	assert.Equal(t, domain.ActionCreate, entry.action)
	assert.Equal(t, "Location: TID-00123", entry.target)
	assert.Equal(t, "Created new location Indomaret Sudirman", entry.details)
}

func TestLocationService_CreateValidation(t *testing.T) {
	svc := NewLocationService(&fakeLocationRepo{}, nil)
	_, err := svc.Create(context.Background(), admin, LocationInput{FLM: "OTHER"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}

func TestLocationService_UpdateKeepsCode(t *testing.T) {
	repo := &fakeLocationRepo{}
	svc := NewLocationService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, LocationInput{TerminalID: "TID-1", Name: "Lama"})
	require.NoError(t, err)
	assert.Equal(t, 0.02, created.ClosedHours)

	inactive := false
	updated, err := svc.Update(ctx, admin, created.ID, LocationInput{Name: "Baru", OpensAt: "22:00", ClosesAt: "06:00", Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, created.TerminalCode, updated.TerminalCode)
	assert.Equal(t, "TID-1", updated.TerminalID)
	assert.Equal(t, "Baru", updated.Name)
	assert.Equal(t, 16.0, updated.ClosedHours)
	assert.False(t, updated.Active)

	_, err = svc.Update(ctx, admin, "not-an-id", LocationInput{})
	assert.Equal(t, "NOT_FOUND", codeOf(err))
}

func TestLocationService_Delete(t *testing.T) {
	repo := &fakeLocationRepo{}
	activity := &activitySpy{}
	svc := NewLocationService(repo, activity)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, LocationInput{TerminalID: "TID-1", Name: "Lokasi"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	assert.Empty(t, repo.items)
	assert.Equal(t, "Deleted location Lokasi", activity.last().details)

	assert.Equal(t, "NOT_FOUND", codeOf(svc.Delete(ctx, admin, created.ID)))
}

func TestLocationService_Import(t *testing.T) {
	repo := &fakeLocationRepo{items: []*domain.Location{{ID: "existing", TerminalID: "TID-00001", TerminalCode: "RND-1000"}}}
	activity := &activitySpy{}
	svc := NewLocationService(repo, activity)

	csvData := strings.Join([]string{
		strings.Join(locationCSVColumns, ","),
		`"TID-00002","20250101","-","TKO-1","Alfamart Thamrin","Jl. Thamrin","Jakarta Pusat","DKI Jakarta","DC JKT","-6.1, 106.8","08:00","20:00","BRINKS-AMS","DATINDO","Telkomsel","0812","Bersih","ALFAMART","Standard","NCR","SN1","ICA","SN2","Samsung","SN3"`,
		``,
		`tid-00001,,,,Duplikat Lama`,
		`TID-00003`,
		`TID-00003,,,,Duplikat Baru`,
		`,,,,Tanpa TID`,
	}, "\n")

	result, err := svc.Import(context.Background(), admin, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, []string{"tid-00001 - Duplikat Lama", "TID-00003 - Duplikat Baru"}, result.Skipped)
	require.Len(t, repo.items, 3)

	full := repo.items[1]
	assert.Equal(t, "Alfamart Thamrin", full.Name)
	assert.Equal(t, "-6.1, 106.8", full.Coordinates)
	assert.Equal(t, domain.FLMBrinksAMS, full.FLM)
	assert.Equal(t, domain.PlacementAlfamart, full.Placement)
	assert.Equal(t, 12.0, full.ClosedHours)

	sparse := repo.items[2]
	assert.Equal(t, unknownLocationName, sparse.Name)
	assert.Equal(t, "00:00", sparse.OpensAt)
	assert.Equal(t, "23:59", sparse.ClosesAt)
	assert.Equal(t, "", sparse.Coordinates)
	assert.Regexp(t, terminalCodePattern, sparse.TerminalCode)
	assert.NotEqual(t, full.TerminalCode, sparse.TerminalCode)

	entry := activity.last()
	assert.Equal(t, domain.ActionImport, entry.action)
	assert.Equal(t, "Data Lokasi", entry.target)
	assert.Equal(t, "Imported 2 records. Skipped 2.", entry.details)
}

func TestLocationService_TemplateAndExport(t *testing.T) {
	repo := &fakeLocationRepo{}
	svc := NewLocationService(repo, &activitySpy{})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	var tmpl bytes.Buffer
	require.NoError(t, svc.WriteTemplate(&tmpl))
	lines := strings.Split(tmpl.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "terminal_id,tanggal_aktivasi,"))
	assert.True(t, strings.HasPrefix(lines[1], `"TID-99999","20250101",`))

	// The template round-trips through import.
	result, err := svc.Import(ctx, admin, strings.NewReader(tmpl.String()))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	_, err = svc.Create(ctx, admin, LocationInput{TerminalID: "TID-2", Name: `Toko "Maju"`})
	require.NoError(t, err)

	var out bytes.Buffer
	filename, err := svc.Export(ctx, admin, &out)
	require.NoError(t, err)
	assert.Equal(t, "data_lokasi_export_2025-06-01.csv", filename)

	exported := strings.Split(out.String(), "\n")
	require.Len(t, exported, 3)
	assert.Equal(t, strings.Join(locationCSVColumns, ","), exported[0])
	assert.Contains(t, exported[1], `"Toko ""Maju"""`)
	assert.Contains(t, exported[2], `"-6.123, 106.123"`)
}
