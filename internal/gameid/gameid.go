// Package gameid generates time-sortable identifiers for hands.
//
// An ID is a UUIDv7 rendered as 26 characters of Crockford base32 behind a
// "hand_" prefix, so IDs created later sort after earlier ones.
package gameid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// Prefix marks every hand identifier.
	Prefix = "hand_"

	alphabet   = "0123456789abcdefghjkmnpqrstvwxyz"
	encodedLen = 26
)

// Generator produces IDs from an injectable clock and entropy source.
type Generator struct {
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator creates a generator. Nil arguments fall back to time.Now and crypto/rand.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{now: now, entropy: entropy}
}

var defaultGenerator = NewGenerator(nil, nil)

// Generate returns a new hand ID using the wall clock and crypto/rand.
func Generate() string {
	return defaultGenerator.Generate()
}

// Generate returns a new hand ID.
func (g *Generator) Generate() string {
	var uuid [16]byte

	ms := uint64(g.now().UnixMilli())
	binary.BigEndian.PutUint64(uuid[0:8], ms<<16)
	if _, err := io.ReadFull(g.entropy, uuid[6:]); err != nil {
		panic("gameid: entropy source failed: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return Prefix + encode(uuid)
}

// encode renders 128 bits as 26 base32 characters, most significant first.
func encode(uuid [16]byte) string {
	hi := binary.BigEndian.Uint64(uuid[0:8])
	lo := binary.BigEndian.Uint64(uuid[8:16])

	out := make([]byte, encodedLen)
	for i := encodedLen - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Validate checks that id has the hand prefix and a well formed body.
func Validate(id string) error {
	body, ok := strings.CutPrefix(id, Prefix)
	if !ok {
		return fmt.Errorf("hand ID %q missing %q prefix", id, Prefix)
	}
	if len(body) != encodedLen {
		return fmt.Errorf("hand ID body must be %d characters, got %d", encodedLen, len(body))
	}
	if body[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", body[0])
	}
	for i := range len(body) {
		if !strings.ContainsRune(alphabet, rune(body[i])) {
			return fmt.Errorf("invalid character %c at position %d", body[i], i)
		}
	}
	return nil
}
