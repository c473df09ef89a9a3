// Package generator produces short codes for new links.
package generator

import (
	"context"
	"crypto/rand"
	"fmt"
)

const (
	// CodeLength is the length of every generated code.
	CodeLength = 6

	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// ExistsFunc reports whether a code is already taken in the store.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator draws random base62 codes until an unused one is found.
// It is safe for concurrent use.
type Generator struct {
	length int
}

func New() *Generator {
	return &Generator{length: CodeLength}
}

// Generate returns a code not present in the store at the time of the
// check. The insert path must still treat a uniqueness violation as a
// signal to regenerate: two concurrent callers can draw the same code
// between the check and the insert.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := g.draw()
		if err != nil {
			return "", fmt.Errorf("draw code: %w", err)
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}

func (g *Generator) draw() (string, error) {
	b := make([]byte, g.length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b), nil
}

// Valid reports whether s could have been produced by this generator
// family: 6 to 16 characters, all from the base62 alphabet.
func Valid(s string) bool {
	if len(s) < 6 || len(s) > 16 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
