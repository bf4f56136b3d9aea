// fieldcipher.go

package core

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Envelope format: enc:<b64 nonce>:<b64 tag>:<b64 ciphertext>. The
// marker prefix lets read paths tell legacy plaintext from ciphertext.
const (
	envelopeMarker    = "enc:"
	envelopeDelimiter = ":"
	envelopeParts     = 4

	gcmNonceSize = 12
	gcmTagSize   = 16
)

// FieldCipher encrypts individual PII values at rest and produces a
// deterministic hash index for equality lookup without decryption.
// A nil key puts the cipher in passthrough mode; config validation
// forbids that in production.
type FieldCipher struct {
	key []byte
}

// NewFieldCipher accepts a 256-bit key as 64 hex characters or as
// base64 decoding to 32 bytes. An empty key yields a passthrough
// cipher.
func NewFieldCipher(key string) (*FieldCipher, error) {
	if key == "" {
		return &FieldCipher{}, nil
	}

	keyBytes, err := decodeFieldKey(key)
	if err != nil {
		return nil, err
	}

	return &FieldCipher{key: keyBytes}, nil
}

func decodeFieldKey(key string) ([]byte, error) {
	if len(key) == 64 {
		if decoded, err := hex.DecodeString(key); err == nil {
			return decoded, nil
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(key)
	if err == nil && len(decoded) == 32 {
		return decoded, nil
	}

	return nil, fmt.Errorf(
		"field encryption key must be 64 hex chars or base64 of 32 bytes",
	)
}

func (c *FieldCipher) Enabled() bool {
	return len(c.key) != 0
}

// Encrypt seals plaintext into an envelope with a fresh random nonce.
// In passthrough mode the value is returned unmodified.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if !c.Enabled() || plaintext == "" {
		return plaintext, nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	return envelopeMarker + strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, envelopeDelimiter), nil
}

// Decrypt opens an envelope back into plaintext. Values without the
// envelope marker pass through unchanged, which transparently covers
// legacy plaintext and no-key data. A malformed envelope or failed tag
// check also returns the input unchanged: decryption failure must
// never break a read path.
func (c *FieldCipher) Decrypt(value string) string {
	if !IsEnvelope(value) {
		return value
	}

	if !c.Enabled() {
		return value
	}

	parts := strings.SplitN(value, envelopeDelimiter, envelopeParts)
	if len(parts) != envelopeParts {
		return value
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != gcmNonceSize {
		return value
	}

	tag, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != gcmTagSize {
		return value
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return value
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return value
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return value
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return value
	}

	return string(plaintext)
}

// HashIndex returns a deterministic one-way hex digest of a value that
// has already been normalized. Empty in, empty out.
func (c *FieldCipher) HashIndex(normalized string) string {
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// IsEnvelope reports whether a stored value is ciphertext rather than
// legacy plaintext.
func IsEnvelope(value string) bool {
	return strings.HasPrefix(value, envelopeMarker)
}
