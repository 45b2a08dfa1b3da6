package security

import (
	"errors"
	"fmt"

	"calc_service/internal/common"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates input past 72 bytes, so anything longer is rejected outright.
const MaxPasswordLength = 72

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted hash of plaintext. Two calls with the same
// plaintext yield different hashes.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("password must not be empty: %w", common.ErrInvalidInput)
	}
	if len(plaintext) > MaxPasswordLength {
		return "", fmt.Errorf("password exceeds %d bytes: %w", MaxPasswordLength, common.ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("security.Hasher.Hash: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A mismatch is
// (false, nil); only an undecodable stored hash is an error.
func (h *Hasher) Verify(plaintext, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%v: %w", err, common.ErrCorruptHash)
}
