package documents

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Checksum returns a 64-bit BLAKE2b digest of text in hex.
// Identical chunks share a checksum, which makes repeated ingestion visible in the table.
func Checksum(text string) string {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
