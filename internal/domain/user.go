package domain

import (
	"net/url"
	"time"
)

// Role names the job function of a back-office user.
type Role string

const (
	RoleSuperAdmin     Role = "Super Admin"
	RoleHelpdesk       Role = "Helpdesk"
	RoleCashManagement Role = "Cash Management"
	RoleTechnician     Role = "Technician"
)

// Permission gates access to one menu of the console.
type Permission string

const (
	PermissionDashboard               Permission = "dashboard"
	PermissionUsers                   Permission = "users"
	PermissionReports                 Permission = "reports"
	PermissionSettings                Permission = "settings"
	PermissionLocations               Permission = "locations"
	PermissionActivityLog             Permission = "log_activity"
	PermissionMail                    Permission = "mail"
	PermissionDataMaster              Permission = "data_master"
	PermissionMasterCategory          Permission = "master_category"
	PermissionMasterComplaintCategory Permission = "master_complaint_category"
	PermissionMasterInfo              Permission = "master_info"
	PermissionMasterBank              Permission = "master_bank"
	PermissionComplaints              Permission = "complaints"
)

// AllPermissions lists every known permission in menu order.
var AllPermissions = []Permission{
	PermissionDashboard,
	PermissionUsers,
	PermissionReports,
	PermissionSettings,
	PermissionLocations,
	PermissionActivityLog,
	PermissionMail,
	PermissionDataMaster,
	PermissionMasterCategory,
	PermissionMasterComplaintCategory,
	PermissionMasterInfo,
	PermissionMasterBank,
	PermissionComplaints,
}

// NeverLoggedIn is the last-login placeholder for new accounts.
const NeverLoggedIn = "-"

// User is a back-office account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Avatar       string
	LastLogin    string
	Permissions  []Permission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleHelpdesk, RoleCashManagement, RoleTechnician:
		return true
	}
	return false
}

// Valid reports whether the permission is known.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Can reports whether the user may open the given menu. Super Admins can open everything.
func (u *User) Can(p Permission) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	for _, granted := range u.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Actor returns the identity snapshot used for comments and activity entries.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: string(u.Role), Avatar: u.Avatar}
}

// AvatarURL builds the generated avatar for a display name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
