package settings_test

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placar/internal/settings"
)

func patchFrom(t *testing.T, body string) settings.Patch {
	t.Helper()
	var patch settings.Patch
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	return patch
}

func TestDefaultsPassValidation(t *testing.T) {
	doc := settings.Defaults()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var patch settings.Patch
	require.NoError(t, json.Unmarshal(raw, &patch))

	v := settings.NewValidator(validator.New())
	assert.Empty(t, v.Validate(patch))
}

func TestValidateCollectsEveryOffendingPath(t *testing.T) {
	v := settings.NewValidator(nil)
	fields := v.Validate(patchFrom(t, `{
		"security": {"passwordPolicy": {"minLength": "8"}, "twoFactorAuth": "yes"},
		"payments": {"gateway": "paypal"},
		"broadcast": {"platform": "facebook"},
		"general": {"language": "fr"}
	}`))

	assert.Equal(t, []string{
		"general.language",
		"security.passwordPolicy.minLength",
		"security.twoFactorAuth",
		"payments.gateway",
		"broadcast.platform",
	}, fields)
}

func TestValidateAcceptsEnumMembers(t *testing.T) {
	v := settings.NewValidator(nil)
	for _, gateway := range []string{"mercadopago", "stripe", "pagarme"} {
		assert.Empty(t, v.Validate(settings.Patch{"payments": json.RawMessage(`{"gateway":"` + gateway + `"}`)}))
	}
	for _, platform := range []string{"youtube", "twitch", "rtmp"} {
		assert.Empty(t, v.Validate(settings.Patch{"broadcast": json.RawMessage(`{"platform":"` + platform + `"}`)}))
	}
	for _, language := range []string{"pt-BR", "en-US", "es"} {
		assert.Empty(t, v.Validate(settings.Patch{"general": json.RawMessage(`{"language":"` + language + `"}`)}))
	}
}

func TestValidateUnknownModuleAndField(t *testing.T) {
	v := settings.NewValidator(nil)
	fields := v.Validate(patchFrom(t, `{"marketing": {}, "store": {"color": "red"}}`))
	assert.Equal(t, []string{"marketing", "store.color"}, fields)
}

func TestValidateModuleMustBeObject(t *testing.T) {
	v := settings.NewValidator(nil)
	assert.Equal(t, []string{"leagues"}, v.Validate(patchFrom(t, `{"leagues": [1,2]}`)))
	assert.Equal(t, []string{"lgpd"}, v.Validate(patchFrom(t, `{"lgpd": null}`)))
}

func TestValidateNumbersAndLists(t *testing.T) {
	v := settings.NewValidator(nil)
	fields := v.Validate(patchFrom(t, `{
		"payments": {"maxInstallments": 2.5, "platformFeePercent": 150},
		"security": {"allowedIps": ["10.0.0.1", 7]},
		"leagues": {"tiebreakCriteria": "wins"}
	}`))
	assert.Equal(t, []string{
		"security.allowedIps",
		"payments.maxInstallments",
		"payments.platformFeePercent",
		"leagues.tiebreakCriteria",
	}, fields)
}

func TestApplyShallowMergeKeepsSiblings(t *testing.T) {
	doc := settings.Defaults()
	next, touched, err := settings.Apply(doc, patchFrom(t, `{"general": {"siteName": "Várzea FC"}}`))
	require.NoError(t, err)

	assert.Equal(t, []settings.Module{settings.ModuleGeneral}, touched)
	assert.Equal(t, "Várzea FC", next.General.SiteName)
	assert.Equal(t, doc.General.Language, next.General.Language)
	assert.Equal(t, doc.General.Currency, next.General.Currency)
	assert.Equal(t, "Placar", doc.General.SiteName, "input document must not change")
}

func TestApplyReplacesNestedObjectWholesale(t *testing.T) {
	doc := settings.Defaults()
	next, _, err := settings.Apply(doc, patchFrom(t, `{"security": {"passwordPolicy": {"minLength": 12}}}`))
	require.NoError(t, err)

	assert.Equal(t, 12, next.Security.PasswordPolicy.MinLength)
	assert.False(t, next.Security.PasswordPolicy.RequireNumbers)
	assert.Equal(t, doc.Security.MaxLoginAttempts, next.Security.MaxLoginAttempts)
	assert.True(t, doc.Security.PasswordPolicy.RequireNumbers)
}

func TestApplyReportsTouchedModulesInCanonicalOrder(t *testing.T) {
	_, touched, err := settings.Apply(settings.Defaults(), patchFrom(t, `{
		"integrations": {"webhookUrl": "https://hooks.example"},
		"general": {"theme": "dark"},
		"payments": {"gateway": "stripe"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []settings.Module{settings.ModuleGeneral, settings.ModulePayments, settings.ModuleIntegrations}, touched)
}

func TestSection(t *testing.T) {
	doc := settings.Defaults()
	assert.Equal(t, doc.Payments, doc.Section(settings.ModulePayments))
	assert.Nil(t, doc.Section(settings.Module("nope")))
}

func TestValidateIntegerFieldsNeedIntegerLiterals(t *testing.T) {
	v := settings.NewValidator(nil)
	for _, literal := range []string{"6.0", "1e1", "6.5", "99999999999"} {
		fields := v.Validate(settings.Patch{"payments": json.RawMessage(`{"maxInstallments": ` + literal + `}`)})
		assert.Equal(t, []string{"payments.maxInstallments"}, fields, literal)
	}
	assert.Empty(t, v.Validate(settings.Patch{"payments": json.RawMessage(`{"maxInstallments": 6}`)}))
	assert.Empty(t, v.Validate(settings.Patch{"payments": json.RawMessage(`{"platformFeePercent": 1e1}`)}))
}

func TestValidateSectionsCatchesKeysDroppedFromNestedObjects(t *testing.T) {
	v := settings.NewValidator(nil)
	patch := patchFrom(t, `{"security": {"passwordPolicy": {}}}`)
	require.Empty(t, v.Validate(patch))

	next, touched, err := settings.Apply(settings.Defaults(), patch)
	require.NoError(t, err)
	assert.Equal(t, []string{"security.passwordPolicy.minLength"}, v.ValidateSections(next, touched))
}

func TestValidateSectionsAcceptsDefaults(t *testing.T) {
	v := settings.NewValidator(nil)
	assert.Empty(t, v.ValidateSections(settings.Defaults(), settings.Modules))
}
