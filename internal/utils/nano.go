package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	NanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	numericAlphabet = "0123456789"
)

// NumericIDSize is the fixed width of user and donation primary keys.
const NumericIDSize = 6

// NanoID returns a collision-resistant name for stored upload files.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// NumericID returns a 6-digit string identifier. The generator itself
// does not guarantee uniqueness; the store retries on collision.
func NumericID() string {
	return gonanoid.MustGenerate(numericAlphabet, NumericIDSize)
}
