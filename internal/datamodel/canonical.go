package datamodel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gowebpki/jcs"
)

func transform(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return out, nil
}

// Canonical returns the model contents as RFC 8785 canonical JSON. Lists stay
// in their index-keyed map form so the bytes mirror the stored structure.
func (m *Model) Canonical() ([]byte, error) {
	return Canonicalize(m.root)
}

// Digest returns the SHA-256 hex digest of the canonical contents. Two models
// with equal contents have equal digests.
func (m *Model) Digest() (string, error) {
	b, err := m.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
