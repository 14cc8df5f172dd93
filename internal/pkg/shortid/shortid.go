package shortid

import (
	"crypto/rand"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Length of generated conversation ids. Short enough for URLs, long enough
// that collisions are a non-issue at this product's scale.
const Length = 7

// New returns a random alphanumeric identifier of the default length.
func New() string {
	return NewWithLength(Length)
}

func NewWithLength(n int) string {
	if n <= 0 {
		n = Length
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible to degrade to.
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}
