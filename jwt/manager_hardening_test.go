package jwt

import (
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-0123456789"),
		RefreshSecret: []byte("refresh-secret-0123456789"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestMintPairRoundTrip(t *testing.T) {
	m := newTestManager(t, testConfig())

	pair, err := m.MintPair("user-1", "user")
	if err != nil {
		t.Fatalf("mint pair: %v", err)
	}

	access, err := m.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.UserID != "user-1" || access.Role != "user" || access.Subject != "user-1" {
		t.Fatalf("unexpected access claims: %+v", access)
	}

	refresh, err := m.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if got := refresh.ExpiresAt.Sub(refresh.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("unexpected refresh lifetime: %v", got)
	}
	if got := access.ExpiresAt.Sub(access.IssuedAt.Time); got != 15*time.Minute {
		t.Fatalf("unexpected access lifetime: %v", got)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, testConfig())

	pair, err := m.MintPair("user-1", "user")
	if err != nil {
		t.Fatalf("mint pair: %v", err)
	}

	if _, err := m.ParseRefresh(pair.AccessToken); err == nil {
		t.Fatal("access token must not verify as refresh token")
	}
	if _, err := m.ParseAccess(pair.RefreshToken); err == nil {
		t.Fatal("refresh token must not verify as access token")
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t, testConfig())

	claims := Claims{UserID: "u", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS512, claims)
	token, err := tok.SignedString(testConfig().AccessSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t, testConfig())

	claims := Claims{UserID: "u", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	token, err := tok.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected none algorithm to be rejected")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager(t, testConfig())
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	access, err := m.CreateAccess("u", "user")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	m.now = time.Now
	if _, err := m.ParseAccess(access); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := newTestManager(t, testConfig())
	other := testConfig()
	other.AccessSecret = []byte("another-access-secret-xx")
	o := newTestManager(t, other)

	access, err := o.CreateAccess("u", "user")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	if _, err := m.ParseAccess(access); err == nil {
		t.Fatal("expected foreign secret to be rejected")
	}
}

func TestParseIssuerAndLeeway(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "otpauth"
	cfg.Leeway = 30 * time.Second
	m := newTestManager(t, cfg)

	access, err := m.CreateAccess("u", "user")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	if _, err := m.ParseAccess(access); err != nil {
		t.Fatalf("expected valid token to parse: %v", err)
	}

	cfg.Issuer = "someone-else"
	other := newTestManager(t, cfg)
	if _, err := other.ParseAccess(access); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"zero access ttl":        func(c *Config) { c.AccessTTL = 0 },
		"refresh shorter":        func(c *Config) { c.RefreshTTL = time.Minute },
		"short secret":           func(c *Config) { c.AccessSecret = []byte("short") },
		"same secrets":           func(c *Config) { c.RefreshSecret = c.AccessSecret },
		"negative leeway":        func(c *Config) { c.Leeway = -time.Second },
		"huge max future iat":    func(c *Config) { c.MaxFutureIAT = 48 * time.Hour },
		"missing refresh secret": func(c *Config) { c.RefreshSecret = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}
