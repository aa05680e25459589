package domain

// LoginFeature is one highlight shown on the login page.
type LoginFeature struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// AppSettings holds the branding of the console.
type AppSettings struct {
	AppName                 string         `json:"appName"`
	Tagline                 string         `json:"tagline"`
	CompanyName             string         `json:"companyName"`
	LogoURL                 *string        `json:"logoUrl"`
	LoginHeadline           string         `json:"loginHeadline"`
	LoginDescription        string         `json:"loginDescription"`
	LoginBackgroundImageURL string         `json:"loginBackgroundImageUrl"`
	LoginFeatures           []LoginFeature `json:"loginFeatures"`
}

// DefaultSettings returns the factory branding.
func DefaultSettings() AppSettings {
	return AppSettings{
		AppName:                 "Problem Log System",
		Tagline:                 "MANAGEMENT SYSTEM",
		CompanyName:             "Problem Log Inc.",
		LogoURL:                 nil,
		LoginHeadline:           "Kelola Insiden &\nMasalah dengan Efisien.",
		LoginDescription:        "Dashboard terpusat untuk memonitor, melacak, dan menyelesaikan masalah teknis operasional perusahaan Anda.",
		LoginBackgroundImageURL: "https://images.unsplash.com/photo-1551288049-bebda4e38f71?q=80&w=2070&auto=format&fit=crop",
		LoginFeatures: []LoginFeature{
			{Title: "Real-time Logging", Desc: "Pencatatan masalah secara langsung dan akurat."},
			{Title: "Secure Access", Desc: "Keamanan data terjamin dengan enkripsi standar industri."},
		},
	}
}
