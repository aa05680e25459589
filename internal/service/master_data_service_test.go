package service

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

func TestMasterDataService_CreateAndUpdate(t *testing.T) {
	repo := &fakeMasterRepo{}
	activity := &activitySpy{}
	svc := NewMasterDataService(repo, activity)
	ctx := context.Background()

	item, err := svc.Create(ctx, admin, "category", MasterItemInput{Name: "Jaringan", Description: "Gangguan komunikasi"})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CAT-\d{4}$`), item.Code)
	assert.Equal(t, domain.MasterTypeCategory, item.Type)
	assert.Equal(t, "Kategori Problem", activity.last().target)
	assert.Equal(t, "Created Jaringan ("+item.Code+")", activity.last().details)

	bank, err := svc.Create(ctx, admin, domain.MasterTypeBank, MasterItemInput{Code: "BNK-0001", Name: "BCA", Description: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "BNK-0001", bank.Code)
	assert.Empty(t, bank.Description)

	_, err = svc.Create(ctx, admin, domain.MasterTypeBank, MasterItemInput{Code: "BNK-0001", Name: "BRI"})
	assert.Equal(t, "CONFLICT", codeOf(err))

	updated, err := svc.Update(ctx, admin, domain.MasterTypeCategory, item.ID, MasterItemInput{Code: "CAT-9999", Name: "Network"})
	require.NoError(t, err)
	assert.Equal(t, item.Code, updated.Code)
	assert.Equal(t, "Network", updated.Name)
	assert.Equal(t, "Updated Network", activity.last().details)

	// An id from another table is not visible through this type.
	_, err = svc.Update(ctx, admin, domain.MasterTypeInfo, item.ID, MasterItemInput{Name: "x"})
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	require.NoError(t, svc.Delete(ctx, admin, domain.MasterTypeCategory, item.ID))
	assert.Equal(t, "Deleted Network", activity.last().details)
}

func TestMasterDataService_Validation(t *testing.T) {
	svc := NewMasterDataService(&fakeMasterRepo{}, nil)
	_, err := svc.Create(context.Background(), admin, "UNKNOWN", MasterItemInput{Name: "x"})
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	_, err = svc.Create(context.Background(), admin, domain.MasterTypeInfo, MasterItemInput{Name: "  "})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}

func TestMasterDataService_ListSearch(t *testing.T) {
	repo := &fakeMasterRepo{}
	svc := NewMasterDataService(repo, nil)
	ctx := context.Background()
	for _, name := range []string{"BCA", "BRI", "Mandiri"} {
		_, err := svc.Create(ctx, admin, domain.MasterTypeBank, MasterItemInput{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, domain.MasterTypeBank, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.List(ctx, domain.MasterTypeBank, "man")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mandiri", found[0].Name)

	byCode, err := svc.List(ctx, domain.MasterTypeBank, strings.ToLower(all[0].Code))
	require.NoError(t, err)
	assert.Len(t, byCode, 1)
}

func TestMasterDataService_CSV(t *testing.T) {
	repo := &fakeMasterRepo{}
	activity := &activitySpy{}
	svc := NewMasterDataService(repo, activity)
	ctx := context.Background()

	var tmpl bytes.Buffer
	require.NoError(t, svc.WriteTemplate(&tmpl, domain.MasterTypeComplaintCategory))
	assert.Equal(t, "name,description\n", tmpl.String())

	tmpl.Reset()
	require.NoError(t, svc.WriteTemplate(&tmpl, domain.MasterTypeBank))
	assert.Equal(t, "name\n", tmpl.String())

	n, err := svc.Import(ctx, admin, domain.MasterTypeComplaintCategory, strings.NewReader(
		"name,description\nUang tidak keluar,Dispenser macet\n\n,Tanpa nama\n\"Kartu, tertelan\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "Imported 3 items with auto-generated codes", activity.last().details)

	items, err := svc.List(ctx, domain.MasterTypeComplaintCategory, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Dispenser macet", items[0].Description)
	assert.Equal(t, unnamedMasterItem, items[1].Name)
	assert.Equal(t, "Kartu, tertelan", items[2].Name)
	codes := map[string]bool{}
	for _, item := range items {
		assert.Regexp(t, regexp.MustCompile(`^ADC-\d{4}$`), item.Code)
		codes[item.Code] = true
	}
	assert.Len(t, codes, 3)

	var out bytes.Buffer
	filename, err := svc.Export(ctx, admin, domain.MasterTypeComplaintCategory, &out)
	require.NoError(t, err)
	assert.Equal(t, "complaint_category_export.csv", filename)
	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "code,name,description", lines[0])
	assert.Equal(t, `"`+items[2].Code+`","Kartu, tertelan",""`, lines[3])
	assert.Equal(t, "Exported data to CSV", activity.last().details)
}
