package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyHashLen is the number of hex characters kept from the digest.
const keyHashLen = 32

// HashKey builds a memo key of the form prefix:digest from JSON-encodable
// parts. Parts that fail to encode contribute their type only, so callers
// must pass plain values.
func HashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			_ = enc.Encode(fmt.Sprintf("%T", p))
		}
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return prefix + ":" + sum[:keyHashLen]
}
