package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// UserService manages console accounts.
type UserService struct {
	users           repository.UserRepository
	activity        ActivityRecorder
	bcryptCost      int
	defaultPassword string
}

// UserInput is the account form. On update an empty Password keeps the current one and
// nil Permissions keep the current grants.
type UserInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.Role
	Permissions []domain.Permission
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository, activity ActivityRecorder) *UserService {
	return &UserService{
		users:           users,
		activity:        activity,
		bcryptCost:      cfg.BcryptCost,
		defaultPassword: cfg.DefaultPassword,
	}
}

// List returns every account, oldest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	notFound := apperrors.NewNotFound("user", map[string]any{"id": id})
	if !isID(id) {
		return nil, notFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, notFound
		}
		return nil, err
	}
	return user, nil
}

// Create registers an account. The password falls back to the configured default.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input UserInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateUserInput(input, true); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, input.Email, ""); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = s.defaultPassword
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Avatar:       domain.AvatarURL(input.Name),
		LastLogin:    domain.NeverLoggedIn,
		Permissions:  normalizePermissions(input.Permissions),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionCreate, "User: "+user.Name,
		fmt.Sprintf("Created new user with role %s", user.Role))
	return user, nil
}

// Update edits an account. Changing the name regenerates the avatar.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, input UserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateUserInput(input, false); err != nil {
		return nil, err
	}

	if input.Email != "" && !strings.EqualFold(input.Email, user.Email) {
		if err := s.ensureEmailFree(ctx, input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = input.Email
	}
	if input.Name != "" && input.Name != user.Name {
		user.Name = input.Name
		user.Avatar = domain.AvatarURL(input.Name)
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Permissions != nil {
		user.Permissions = normalizePermissions(input.Permissions)
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	record(ctx, s.activity, actor, domain.ActionUpdate, "User: "+user.Name,
		"Updated details for user ID "+user.ID)
	return user, nil
}

// Delete removes an account. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actor.ID {
		return apperrors.NewConflict("cannot delete the signed-in account", map[string]any{"id": id})
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	record(ctx, s.activity, actor, domain.ActionDelete, "User: "+user.Name, "Deleted user ID "+user.ID)
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID == ownerID {
		return nil
	}
	return apperrors.NewConflict("email already registered", map[string]any{"email": email})
}

func validateUserInput(input UserInput, creating bool) error {
	details := map[string]any{}
	if creating && input.Name == "" {
		details["name"] = "required"
	}
	if creating && input.Email == "" {
		details["email"] = "required"
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		details["email"] = "must be an email address"
	}
	if (creating || input.Role != "") && !input.Role.Valid() {
		details["role"] = "must be one of Super Admin, Helpdesk, Cash Management, Technician"
	}
	for _, p := range input.Permissions {
		if !p.Valid() {
			details["permissions"] = fmt.Sprintf("unknown permission %q", p)
			break
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid user", details)
	}
	return nil
}

func normalizePermissions(perms []domain.Permission) []domain.Permission {
	out := make([]domain.Permission, 0, len(perms))
	seen := map[domain.Permission]bool{}
	for _, p := range perms {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
