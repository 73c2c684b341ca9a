package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParticipantIDTag is the constant prefix of every participant identifier.
const ParticipantIDTag = "DCH"

// participantIDDigestLen is the number of hex digits kept from the digest.
const participantIDDigestLen = 8

// IDGenerator generates various types of IDs
type IDGenerator struct {
	rand *rand.Rand
	now  func() time.Time
}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

// GenerateUUID generates a UUID v4
func (g *IDGenerator) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateParticipantID derives a short shareable participant token.
// Format: DCH-XXXXXXXX (e.g. DCH-9F2A41C7).
//
// The digest covers unit, team and the current nanosecond timestamp but
// never the participant name, so the token cannot be reconstructed from
// public registration info. Uniqueness across registrations is the
// responsibility of the caller's retry loop; two calls in the same
// nanosecond for the same unit/team collide.
func (g *IDGenerator) GenerateParticipantID(unit, team string) string {
	seed := fmt.Sprintf("%s|%s|%d", unit, team, g.now().UnixNano())
	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])

	return fmt.Sprintf("%s-%s", ParticipantIDTag, strings.ToUpper(digest[:participantIDDigestLen]))
}

// GenerateCode generates a random code (for collision fallback suffixes, etc.)
func (g *IDGenerator) GenerateCode(length int) string {
	return g.randomAlphanumeric(length)
}

// randomAlphanumeric generates a random alphanumeric string
func (g *IDGenerator) randomAlphanumeric(length int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = chars[g.rand.Intn(len(chars))]
	}
	return string(result)
}
