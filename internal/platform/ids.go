package platform

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// UUIDGenerator issues random (version 4) document ids
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Generate() string {
	return uuid.New().String()
}

// Unambiguous alphabet: no 0/O, 1/I.
const (
	AccessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	AccessCodeLength   = 8
)

// AccessCodeGenerator draws human-friendly access codes from crypto/rand
type AccessCodeGenerator struct {
	length int
}

func NewAccessCodeGenerator() *AccessCodeGenerator {
	return &AccessCodeGenerator{length: AccessCodeLength}
}

// Generate returns a fresh access code
func (g *AccessCodeGenerator) Generate() (string, error) {
	base := big.NewInt(int64(len(AccessCodeAlphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		code[i] = AccessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
