package refid

import (
	"crypto/rand"
	"fmt"
)

const (
	suffixLength = 6
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator mints human-shareable reference ids of the form
// PREFIX-XXXXXX, with a 6-character uppercase alphanumeric suffix.
// Uniqueness against the store is the caller's responsibility.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(prefix string) (string, error) {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	suffix := make([]byte, suffixLength)
	for i, b := range buf {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + "-" + string(suffix), nil
}
