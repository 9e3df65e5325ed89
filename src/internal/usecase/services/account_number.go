package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"strings"
	"unicode"
)

const maxAccountNumberAttempts = 25

const defaultAccountPrefix = "ACC"

// RandomSource yields integers in [0, n). Tests inject deterministic sequences.
type RandomSource interface {
	IntN(n int) int
}

type cryptoRandom struct{}

func (cryptoRandom) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}
	return int(v.Int64())
}

func accountNumberPrefix(holderName string) string {
	var letters strings.Builder
	for _, ch := range strings.TrimSpace(holderName) {
		if ch <= unicode.MaxASCII && unicode.IsLetter(ch) {
			letters.WriteRune(unicode.ToUpper(ch))
			if letters.Len() == 3 {
				break
			}
		}
	}

	prefix := letters.String()
	if prefix == "" {
		return defaultAccountPrefix
	}

	return prefix + strings.Repeat("X", 3-len(prefix))
}

func accountNumberCandidate(prefix string, random RandomSource) string {
	return fmt.Sprintf("%s%04d", prefix, random.IntN(10_000))
}
