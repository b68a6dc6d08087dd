package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Hash returns the hex-encoded SHA3-256 digest of the given plaintext.
// The function is deterministic and unsalted: equal plaintexts always
// produce equal digests, which is what both password storage and
// comparison rely on.
func Hash(plaintext string) string {
	sum := sha3.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
