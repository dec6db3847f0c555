package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

// checksumVersion is bumped whenever the canonical representation changes.
const checksumVersion = 1

// SerializationChecksum is a deterministic fingerprint of a View.
type SerializationChecksum struct {
	Hash    string // SHA-256 of the canonical representation
	Version int
}

// ComputeChecksum hashes the canonical representation of v.
func (v View) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(v.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: checksumVersion,
	}, nil
}

// VerifyChecksum reports whether v still hashes to expected.
func (v View) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("no checksum to verify against")
	}
	if expected.Version != checksumVersion {
		return false, fmt.Errorf("unsupported checksum version: %d", expected.Version)
	}
	computed, err := v.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// canonical renders v line by line. Board and selection order are part of
// the state, so neither is sorted.
func (v View) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%d|%d|%d|%d|%t\n", v.Game, v.Score, v.DeckRemaining, v.Claimed, v.GameOver)
	buf.WriteString("IN_PLAY:")
	buf.WriteString(joinCards(v.InPlay))
	buf.WriteString("\nSELECTION:")
	buf.WriteString(joinCards(v.Selection))
	buf.WriteString("\n")
	return buf.String()
}

func joinCards(cards []triad.Identity) string {
	parts := make([]string, len(cards))
	for i, id := range cards {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
