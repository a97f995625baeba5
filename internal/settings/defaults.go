package settings

// Defaults returns the platform default document. Every call builds a new
// value so callers never share slices.
func Defaults() Document {
	return Document{
		General: General{
			SiteName:       "Placar",
			Language:       "pt-BR",
			Timezone:       "America/Sao_Paulo",
			Currency:       "BRL",
			PrimaryColor:   "#0B6E4F",
			SecondaryColor: "#FFFFFF",
			Theme:          "system",
		},
		Security: Security{
			PasswordPolicy: PasswordPolicy{
				MinLength:      8,
				RequireNumbers: true,
			},
			OTPLoginEnabled:       true,
			SessionTimeoutMinutes: 1440,
			MaxLoginAttempts:      5,
			LockoutMinutes:        15,
			AllowedIPs:            []string{},
		},
		Payments: Payments{
			Gateway:           "mercadopago",
			SandboxMode:       true,
			PixEnabled:        true,
			CreditCardEnabled: true,
			MaxInstallments:   12,
		},
		Store: Store{
			OneClickCheckoutForSocios: true,
			SocioDiscountPercent:      10,
			LowStockThreshold:         5,
		},
		Leagues: Leagues{
			AllowTeamRegistration: true,
			DefaultFormat:         "round_robin",
			MaxTeamsPerLeague:     20,
			MaxPlayersPerTeam:     25,
			PointsWin:             3,
			PointsDraw:            1,
			PointsLoss:            0,
			TiebreakCriteria:      []string{"wins", "goal_difference", "goals_for", "head_to_head"},
		},
		Broadcast: Broadcast{
			Platform:    "youtube",
			ChatEnabled: true,
		},
		Notifications: Notifications{
			EmailEnabled:        true,
			MatchReminders:      true,
			ReminderHoursBefore: 24,
			DigestFrequency:     "weekly",
		},
		LGPD: LGPD{
			DataRetentionDays:      1825,
			CookieBannerEnabled:    true,
			RequireExplicitConsent: true,
			AllowDataExport:        true,
		},
		Integrations: Integrations{
			SMSProvider:  "none",
			MailProvider: "resend",
		},
	}
}
