package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 16

// TokenKind distinguishes the two halves of a session pair.
type TokenKind uint8

const (
	KindAccess TokenKind = iota + 1
	KindRefresh
)

func (k TokenKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Config holds signing secrets and token lifetimes.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

// Manager mints and parses session tokens. It is immutable after construction.
type Manager struct {
	config Config
	now    func() time.Time
}

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Pair is a freshly minted access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// NewManager validates cfg. The two secrets must be set and must differ.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if len(cfg.AccessSecret) < minSecretBytes || len(cfg.RefreshSecret) < minSecretBytes {
		return nil, fmt.Errorf("token secrets must be at least %d bytes", minSecretBytes)
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// AccessTTL is the lifetime of minted access tokens.
func (j *Manager) AccessTTL() time.Duration { return j.config.AccessTTL }

// RefreshTTL is the lifetime of minted refresh tokens.
func (j *Manager) RefreshTTL() time.Duration { return j.config.RefreshTTL }

// MintPair creates a new access and refresh token for the user.
func (j *Manager) MintPair(userID, role string) (Pair, error) {
	access, err := j.CreateAccess(userID, role)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := j.CreateRefresh(userID, role)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *Manager) CreateAccess(userID, role string) (string, error) {
	return j.create(KindAccess, userID, role)
}

func (j *Manager) CreateRefresh(userID, role string) (string, error) {
	return j.create(KindRefresh, userID, role)
}

func (j *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return j.parse(KindAccess, tokenStr)
}

func (j *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return j.parse(KindRefresh, tokenStr)
}

func (j *Manager) create(kind TokenKind, userID, role string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}

	now := j.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret(kind))
}

func (j *Manager) parse(kind TokenKind, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return j.secret(kind), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt != nil && j.config.MaxFutureIAT > 0 {
		maxAllowed := j.now().Add(j.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, errors.New("token iat too far in the future")
		}
	}

	return claims, nil
}

func (j *Manager) ttl(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return j.config.RefreshTTL
	}
	return j.config.AccessTTL
}

func (j *Manager) secret(kind TokenKind) []byte {
	if kind == KindRefresh {
		return j.config.RefreshSecret
	}
	return j.config.AccessSecret
}
