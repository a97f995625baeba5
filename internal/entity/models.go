package entity

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&OTPCode{},
		&PrivacyConsent{},
		&TenantSettings{},
		&SettingsLog{},
		&VerificationToken{},
		&MFASecret{},
		&SecurityLog{},
	}
}
