package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when Config.Cost is zero.
const DefaultCost = 10

// Config defines the bcrypt work factor.
type Config struct {
	Cost int
}

// Bcrypt hashes and verifies passwords. It is safe for concurrent use.
type Bcrypt struct {
	cost int
}

// NewBcrypt validates cfg and returns a hasher.
func NewBcrypt(cfg Config) (*Bcrypt, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns a salted bcrypt hash of password.
func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches encodedHash. A mismatch is not an
// error; a malformed hash is.
func (b *Bcrypt) Verify(password string, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// NeedsUpgrade reports whether encodedHash was produced with a lower cost
// than the hasher is configured for.
func (b *Bcrypt) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}
	return cost < b.cost, nil
}
