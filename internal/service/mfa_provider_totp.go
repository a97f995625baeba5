package service

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const defaultMFAIssuer = "Placar"

type TOTPProvider struct {
	Issuer    string
	Period    uint
	Skew      uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
	Clock     Clock
}

func NewTOTPProvider(issuer string) *TOTPProvider {
	return &TOTPProvider{
		Issuer:    issuer,
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (p *TOTPProvider) GenerateSecret(accountName string) (string, error) {
	if strings.TrimSpace(accountName) == "" {
		accountName = "pending"
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer(""),
		AccountName: accountName,
		Period:      p.period(),
		Digits:      p.digits(),
		Algorithm:   p.algorithm(),
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// QRCodeURL builds the otpauth:// URL authenticator apps scan.
func (p *TOTPProvider) QRCodeURL(accountName string, issuer string, secret string) (string, error) {
	finalIssuer := p.issuer(issuer)
	label := url.PathEscape(finalIssuer + ":" + accountName)
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", finalIssuer)
	query.Set("algorithm", p.algorithm().String())
	query.Set("digits", p.digits().String())
	query.Set("period", strconv.FormatUint(uint64(p.period()), 10))
	return "otpauth://totp/" + label + "?" + query.Encode(), nil
}

func (p *TOTPProvider) ValidateCode(secret string, code string) bool {
	valid, err := totp.ValidateCustom(strings.TrimSpace(code), secret, clockNow(p.Clock), totp.ValidateOpts{
		Period:    p.period(),
		Skew:      p.skew(),
		Digits:    p.digits(),
		Algorithm: p.algorithm(),
	})
	return err == nil && valid
}

// Code returns the current code for secret. Used by tests and tooling.
func (p *TOTPProvider) Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    p.period(),
		Skew:      p.skew(),
		Digits:    p.digits(),
		Algorithm: p.algorithm(),
	})
}

func (p *TOTPProvider) issuer(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if strings.TrimSpace(p.Issuer) != "" {
		return p.Issuer
	}
	return defaultMFAIssuer
}

func (p *TOTPProvider) period() uint {
	if p.Period == 0 {
		return 30
	}
	return p.Period
}

func (p *TOTPProvider) skew() uint {
	if p.Skew == 0 {
		return 1
	}
	return p.Skew
}

func (p *TOTPProvider) digits() otp.Digits {
	if p.Digits == 0 {
		return otp.DigitsSix
	}
	return p.Digits
}

func (p *TOTPProvider) algorithm() otp.Algorithm {
	if p.Algorithm == 0 {
		return otp.AlgorithmSHA1
	}
	return p.Algorithm
}
