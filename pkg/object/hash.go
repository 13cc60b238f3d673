package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

const (
	// RawHashLen is the digest size in bytes; HexHashLen is the length of
	// its lowercase hex form.
	RawHashLen = sha1.Size
	HexHashLen = 2 * sha1.Size
)

// HashObject computes the SHA-1 of the envelope "type len\0body" without
// persisting anything. It is the same digest Store.Write assigns, so
// callers can predict an object's id from its content alone.
func HashObject(objType ObjectType, body []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(body))
	h := sha1.New()
	h.Write([]byte(header))
	h.Write(body)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashFromRaw converts a 20-byte binary digest to its hex form.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != RawHashLen {
		return "", fmt.Errorf("raw hash: got %d bytes, want %d", len(raw), RawHashLen)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Raw converts the hex form back to the 20 binary digest bytes.
func (h Hash) Raw() ([]byte, error) {
	if len(h) != HexHashLen {
		return nil, fmt.Errorf("hash %q: got %d chars, want %d", h, len(h), HexHashLen)
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("hash %q: %w", h, err)
	}
	return raw, nil
}

// Valid reports whether h is a well-formed 40-character lowercase hex id.
func (h Hash) Valid() bool {
	if len(h) != HexHashLen {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IsZero reports whether h is the "no object" value.
func (h Hash) IsZero() bool { return h == "" }

// Short returns the abbreviated display form.
func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h[:7])
}
