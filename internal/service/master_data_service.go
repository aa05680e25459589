package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const unnamedMasterItem = "Tanpa Nama"

// MasterDataService manages the reference tables behind the complaint forms.
type MasterDataService struct {
	repo     repository.MasterDataRepository
	activity ActivityRecorder
}

// MasterItemInput is the editable part of a reference row. Code is only honoured on create.
type MasterItemInput struct {
	Code        string
	Name        string
	Description string
}

// NewMasterDataService constructs the service.
func NewMasterDataService(repo repository.MasterDataRepository, activity ActivityRecorder) *MasterDataService {
	return &MasterDataService{repo: repo, activity: activity}
}

// Profile resolves a master type or reports NOT_FOUND.
func (s *MasterDataService) Profile(t domain.MasterType) (domain.MasterTypeProfile, error) {
	profile, ok := domain.MasterType(strings.ToUpper(string(t))).Profile()
	if !ok {
		return domain.MasterTypeProfile{}, apperrors.NewNotFound("master type", map[string]any{"type": t})
	}
	return profile, nil
}

// List returns the rows of one type, oldest first, filtered by name or code.
func (s *MasterDataService) List(ctx context.Context, t domain.MasterType, search string) ([]domain.MasterItem, error) {
	profile, err := s.Profile(t)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByType(ctx, profile.Type)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items, nil
	}
	out := make([]domain.MasterItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), search) || strings.Contains(strings.ToLower(item.Code), search) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Create adds a row, generating a code when none is given.
func (s *MasterDataService) Create(ctx context.Context, actor domain.Actor, t domain.MasterType, input MasterItemInput) (*domain.MasterItem, error) {
	profile, err := s.Profile(t)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("invalid master item", map[string]any{"name": "required"})
	}

	taken, err := s.codesOf(ctx, profile.Type)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		if code, err = generateCode(profile.Prefix, inSet(taken)); err != nil {
			return nil, err
		}
	} else if taken[code] {
		return nil, apperrors.NewConflict("code already used", map[string]any{"code": code})
	}

	item := &domain.MasterItem{Type: profile.Type, Code: code, Name: name}
	if profile.HasDescription {
		item.Description = strings.TrimSpace(input.Description)
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionCreate, profile.Title, fmt.Sprintf("Created %s (%s)", item.Name, item.Code))
	return item, nil
}

// Update renames a row. The code never changes.
func (s *MasterDataService) Update(ctx context.Context, actor domain.Actor, t domain.MasterType, id string, input MasterItemInput) (*domain.MasterItem, error) {
	profile, item, err := s.get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}
	if profile.HasDescription {
		item.Description = strings.TrimSpace(input.Description)
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	record(ctx, s.activity, actor, domain.ActionUpdate, profile.Title, "Updated "+item.Name)
	return item, nil
}

// Delete removes a row.
func (s *MasterDataService) Delete(ctx context.Context, actor domain.Actor, t domain.MasterType, id string) error {
	profile, item, err := s.get(ctx, t, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return apperrors.MapError(err)
	}
	record(ctx, s.activity, actor, domain.ActionDelete, profile.Title, "Deleted "+item.Name)
	return nil
}

// Import adds one row per CSV line after the header. Codes are always generated.
func (s *MasterDataService) Import(ctx context.Context, actor domain.Actor, t domain.MasterType, r io.Reader) (int, error) {
	profile, err := s.Profile(t)
	if err != nil {
		return 0, err
	}
	taken, err := s.codesOf(ctx, profile.Type)
	if err != nil {
		return 0, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	items := []*domain.MasterItem{}
	header := true
	for {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, apperrors.NewValidationError("unreadable CSV file", map[string]any{"error": err.Error()})
		}
		if header {
			header = false
			continue
		}
		if len(cols) == 0 || (len(cols) == 1 && strings.TrimSpace(cols[0]) == "") {
			continue
		}

		item := &domain.MasterItem{Type: profile.Type, Name: strings.TrimSpace(cols[0])}
		if item.Name == "" {
			item.Name = unnamedMasterItem
		}
		if profile.HasDescription && len(cols) > 1 {
			item.Description = strings.TrimSpace(cols[1])
		}
		code, err := generateCode(profile.Prefix, inSet(taken))
		if err != nil {
			return 0, err
		}
		taken[code] = true
		item.Code = code
		items = append(items, item)
	}

	if err := s.repo.CreateMany(ctx, items); err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionImport, profile.Title,
		fmt.Sprintf("Imported %d items with auto-generated codes", len(items)))
	return len(items), nil
}

// WriteTemplate writes the import header for the type.
func (s *MasterDataService) WriteTemplate(w io.Writer, t domain.MasterType) error {
	profile, err := s.Profile(t)
	if err != nil {
		return err
	}
	header := "name"
	if profile.HasDescription {
		header = "name,description"
	}
	_, err = io.WriteString(w, header+"\n")
	return err
}

// Export writes every row of the type with quoted values and returns the download filename.
func (s *MasterDataService) Export(ctx context.Context, actor domain.Actor, t domain.MasterType, w io.Writer) (string, error) {
	profile, err := s.Profile(t)
	if err != nil {
		return "", err
	}
	items, err := s.repo.ListByType(ctx, profile.Type)
	if err != nil {
		return "", err
	}

	header := "code,name"
	if profile.HasDescription {
		header = "code,name,description"
	}
	lines := []string{header}
	for _, item := range items {
		values := []string{item.Code, item.Name}
		if profile.HasDescription {
			values = append(values, item.Description)
		}
		lines = append(lines, quoteCSVRow(values))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return "", err
	}

	record(ctx, s.activity, actor, domain.ActionExport, profile.Title, "Exported data to CSV")
	return strings.ToLower(string(profile.Type)) + "_export.csv", nil
}

func (s *MasterDataService) get(ctx context.Context, t domain.MasterType, id string) (domain.MasterTypeProfile, *domain.MasterItem, error) {
	profile, err := s.Profile(t)
	if err != nil {
		return profile, nil, err
	}
	notFound := apperrors.NewNotFound("master item", map[string]any{"id": id})
	if !isID(id) {
		return profile, nil, notFound
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return profile, nil, notFound
		}
		return profile, nil, err
	}
	if item.Type != profile.Type {
		return profile, nil, notFound
	}
	return profile, item, nil
}

func (s *MasterDataService) codesOf(ctx context.Context, t domain.MasterType) (map[string]bool, error) {
	items, err := s.repo.ListByType(ctx, t)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]bool, len(items))
	for _, item := range items {
		codes[item.Code] = true
	}
	return codes, nil
}

func inSet(set map[string]bool) func(string) (bool, error) {
	return func(code string) (bool, error) { return set[code], nil }
}
