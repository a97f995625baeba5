// Package settings defines the per-tenant configuration document, its
// defaults, the partial-update merge and the field-level validator.
package settings

import "encoding/json"

// GlobalTenant is the platform-wide tenant id.
const GlobalTenant = "global"

type Module string

const (
	ModuleGeneral       Module = "general"
	ModuleSecurity      Module = "security"
	ModulePayments      Module = "payments"
	ModuleStore         Module = "store"
	ModuleLeagues       Module = "leagues"
	ModuleBroadcast     Module = "broadcast"
	ModuleNotifications Module = "notifications"
	ModuleLGPD          Module = "lgpd"
	ModuleIntegrations  Module = "integrations"
)

// Modules lists every module in canonical order. Audit entries and
// validation errors follow this order.
var Modules = []Module{
	ModuleGeneral,
	ModuleSecurity,
	ModulePayments,
	ModuleStore,
	ModuleLeagues,
	ModuleBroadcast,
	ModuleNotifications,
	ModuleLGPD,
	ModuleIntegrations,
}

func (m Module) Valid() bool {
	for _, known := range Modules {
		if known == m {
			return true
		}
	}
	return false
}

type Document struct {
	General       General       `json:"general"`
	Security      Security      `json:"security"`
	Payments      Payments      `json:"payments"`
	Store         Store         `json:"store"`
	Leagues       Leagues       `json:"leagues"`
	Broadcast     Broadcast     `json:"broadcast"`
	Notifications Notifications `json:"notifications"`
	LGPD          LGPD          `json:"lgpd"`
	Integrations  Integrations  `json:"integrations"`
}

type General struct {
	SiteName        string `json:"siteName"`
	Description     string `json:"description"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
	Language        string `json:"language" validate:"oneof=pt-BR en-US es"`
	Timezone        string `json:"timezone"`
	Currency        string `json:"currency" validate:"oneof=BRL USD EUR"`
	LogoURL         string `json:"logoUrl"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	Theme           string `json:"theme" validate:"oneof=light dark system"`
	MaintenanceMode bool   `json:"maintenanceMode"`
}

type PasswordPolicy struct {
	MinLength        int  `json:"minLength" validate:"min=6,max=128"`
	RequireUppercase bool `json:"requireUppercase"`
	RequireNumbers   bool `json:"requireNumbers"`
	RequireSymbols   bool `json:"requireSymbols"`
	ExpirationDays   int  `json:"expirationDays" validate:"min=0,max=365"`
}

type Security struct {
	PasswordPolicy        PasswordPolicy `json:"passwordPolicy"`
	TwoFactorAuth         bool           `json:"twoFactorAuth"`
	OTPLoginEnabled       bool           `json:"otpLoginEnabled"`
	SessionTimeoutMinutes int            `json:"sessionTimeoutMinutes" validate:"min=5,max=10080"`
	MaxLoginAttempts      int            `json:"maxLoginAttempts" validate:"min=1,max=20"`
	LockoutMinutes        int            `json:"lockoutMinutes" validate:"min=0,max=1440"`
	AllowedIPs            []string       `json:"allowedIps"`
}

type Payments struct {
	Enabled            bool    `json:"enabled"`
	Gateway            string  `json:"gateway" validate:"oneof=mercadopago stripe pagarme"`
	PublicKey          string  `json:"publicKey"`
	SandboxMode        bool    `json:"sandboxMode"`
	PixEnabled         bool    `json:"pixEnabled"`
	BoletoEnabled      bool    `json:"boletoEnabled"`
	CreditCardEnabled  bool    `json:"creditCardEnabled"`
	MaxInstallments    int     `json:"maxInstallments" validate:"min=1,max=12"`
	PlatformFeePercent float64 `json:"platformFeePercent" validate:"min=0,max=100"`
}

type Store struct {
	Enabled                   bool    `json:"enabled"`
	ShowOutOfStock            bool    `json:"showOutOfStock"`
	OneClickCheckoutForSocios bool    `json:"oneClickCheckoutForSocios"`
	SocioDiscountPercent      float64 `json:"socioDiscountPercent" validate:"min=0,max=100"`
	FreeShippingThreshold     float64 `json:"freeShippingThreshold" validate:"min=0"`
	ShippingFlatRate          float64 `json:"shippingFlatRate" validate:"min=0"`
	LowStockThreshold         int     `json:"lowStockThreshold" validate:"min=0"`
	OrderNotificationEmail    string  `json:"orderNotificationEmail"`
}

type Leagues struct {
	AllowTeamRegistration bool     `json:"allowTeamRegistration"`
	DefaultFormat         string   `json:"defaultFormat" validate:"oneof=round_robin knockout groups"`
	MaxTeamsPerLeague     int      `json:"maxTeamsPerLeague" validate:"min=2,max=256"`
	MaxPlayersPerTeam     int      `json:"maxPlayersPerTeam" validate:"min=1,max=100"`
	PointsWin             int      `json:"pointsWin" validate:"min=0"`
	PointsDraw            int      `json:"pointsDraw" validate:"min=0"`
	PointsLoss            int      `json:"pointsLoss" validate:"min=0"`
	TiebreakCriteria      []string `json:"tiebreakCriteria"`
}

type Broadcast struct {
	Enabled     bool   `json:"enabled"`
	Platform    string `json:"platform" validate:"oneof=youtube twitch rtmp"`
	ChannelID   string `json:"channelId"`
	StreamKey   string `json:"streamKey"`
	RTMPURL     string `json:"rtmpUrl"`
	AutoRecord  bool   `json:"autoRecord"`
	ChatEnabled bool   `json:"chatEnabled"`
}

type Notifications struct {
	EmailEnabled        bool   `json:"emailEnabled"`
	SMSEnabled          bool   `json:"smsEnabled"`
	PushEnabled         bool   `json:"pushEnabled"`
	WhatsappEnabled     bool   `json:"whatsappEnabled"`
	MatchReminders      bool   `json:"matchReminders"`
	ReminderHoursBefore int    `json:"reminderHoursBefore" validate:"min=1,max=168"`
	DigestFrequency     string `json:"digestFrequency" validate:"oneof=never daily weekly"`
}

type LGPD struct {
	DPOName                string `json:"dpoName"`
	DPOEmail               string `json:"dpoEmail"`
	PrivacyPolicyURL       string `json:"privacyPolicyUrl"`
	TermsURL               string `json:"termsUrl"`
	DataRetentionDays      int    `json:"dataRetentionDays" validate:"min=30,max=3650"`
	CookieBannerEnabled    bool   `json:"cookieBannerEnabled"`
	RequireExplicitConsent bool   `json:"requireExplicitConsent"`
	AllowDataExport        bool   `json:"allowDataExport"`
}

type Integrations struct {
	GoogleAnalyticsID string `json:"googleAnalyticsId"`
	FacebookPixelID   string `json:"facebookPixelId"`
	WhatsappNumber    string `json:"whatsappNumber"`
	WebhookURL        string `json:"webhookUrl"`
	SMSProvider       string `json:"smsProvider" validate:"oneof=none twilio zenvia"`
	MailProvider      string `json:"mailProvider" validate:"oneof=none resend smtp"`
}

// Patch is a partial update: module name to the raw JSON object holding
// the keys to replace.
type Patch map[string]json.RawMessage

// Section returns a module's current value, used for audit snapshots.
func (d Document) Section(m Module) any {
	switch m {
	case ModuleGeneral:
		return d.General
	case ModuleSecurity:
		return d.Security
	case ModulePayments:
		return d.Payments
	case ModuleStore:
		return d.Store
	case ModuleLeagues:
		return d.Leagues
	case ModuleBroadcast:
		return d.Broadcast
	case ModuleNotifications:
		return d.Notifications
	case ModuleLGPD:
		return d.LGPD
	case ModuleIntegrations:
		return d.Integrations
	}
	return nil
}
