package capability

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"listsync/internal/domain"
)

const (
	// HashLength is the length of every generated capability token.
	HashLength = 48
	// MinHashLength is the minimum length ValidateFormat accepts.
	MinHashLength = 32

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type generator struct{}

// NewGenerator returns a HashGenerator backed by crypto/rand. The token is
// the sole credential for list access, so a cryptographically secure source
// is a correctness requirement here, not a preference.
func NewGenerator() domain.HashGenerator {
	return &generator{}
}

// Generate produces an opaque token mixing at least 128 bits of secure
// randomness with a nanosecond timestamp and the issuing context. The
// contextual digest only ties the token to its origin; unguessability comes
// entirely from the random component.
func (g *generator) Generate(listID, issuerUserID string) (string, error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixNano()))

	h := sha256.New()
	h.Write(random)
	h.Write(ts[:])
	h.Write([]byte(listID))
	h.Write([]byte(issuerUserID))
	seed := h.Sum(nil)

	// Stretch the digest with fresh random bytes so the token length is not
	// bounded by the digest size.
	extra := make([]byte, HashLength-len(seed))
	if _, err := rand.Read(extra); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	seed = append(seed, extra...)

	token := make([]byte, HashLength)
	for i := range token {
		token[i] = alphabet[int(seed[i])%len(alphabet)]
	}
	return string(token), nil
}

// GenerateUnique retries Generate until the result is absent from existing.
// A collision at this entropy indicates a broken random source, so running
// out of attempts surfaces as domain.ErrHashExhausted rather than degrading.
func (g *generator) GenerateUnique(listID, issuerUserID string, existing map[string]struct{}, maxAttempts int) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		hash, err := g.Generate(listID, issuerUserID)
		if err != nil {
			return "", err
		}
		if _, taken := existing[hash]; !taken {
			return hash, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrHashExhausted, maxAttempts)
}

// ValidateFormat reports whether candidate could have been produced by
// Generate: minimum length and alphanumeric alphabet only. It says nothing
// about whether a matching invitation exists.
func (g *generator) ValidateFormat(candidate string) bool {
	if len(candidate) < MinHashLength {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}
