package domain

import "time"

// MasterType identifies one reference table.
type MasterType string

const (
	MasterTypeCategory          MasterType = "CATEGORY"
	MasterTypeComplaintCategory MasterType = "COMPLAINT_CATEGORY"
	MasterTypeInfo              MasterType = "INFO"
	MasterTypeBank              MasterType = "BANK"
)

// MasterTypeProfile describes how a master type is presented and coded.
type MasterTypeProfile struct {
	Type           MasterType
	Title          string
	Prefix         string
	HasDescription bool
	Permission     Permission
}

var masterTypeProfiles = map[MasterType]MasterTypeProfile{
	MasterTypeCategory: {
		Type: MasterTypeCategory, Title: "Kategori Problem", Prefix: "CAT",
		HasDescription: true, Permission: PermissionMasterCategory,
	},
	MasterTypeComplaintCategory: {
		Type: MasterTypeComplaintCategory, Title: "Kategori Aduan", Prefix: "ADC",
		HasDescription: true, Permission: PermissionMasterComplaintCategory,
	},
	MasterTypeInfo: {
		Type: MasterTypeInfo, Title: "Info Problem", Prefix: "INF",
		HasDescription: true, Permission: PermissionMasterInfo,
	},
	MasterTypeBank: {
		Type: MasterTypeBank, Title: "Bank Issuer", Prefix: "BNK",
		HasDescription: false, Permission: PermissionMasterBank,
	},
}

// Profile returns the presentation rules for the type.
func (t MasterType) Profile() (MasterTypeProfile, bool) {
	profile, ok := masterTypeProfiles[t]
	return profile, ok
}

// MasterItem is one row of a reference table.
type MasterItem struct {
	ID          string
	Type        MasterType
	Code        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
