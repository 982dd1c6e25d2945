package shortener

import (
	"strings"
	"testing"
)

func TestNewCode(t *testing.T) {
	t.Run("has fixed length and allowed characters", func(t *testing.T) {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("expected length %d, got %d", codeLength, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("unexpected character %q in code %s", c, code)
			}
		}
	})

	t.Run("produces varied codes", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := NewCode()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			seen[code] = true
		}
		// 100 draws from a 62^6 space colliding down to a handful would
		// mean the generator is broken.
		if len(seen) < 95 {
			t.Fatalf("expected close to 100 distinct codes, got %d", len(seen))
		}
	})
}
