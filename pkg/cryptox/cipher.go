package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	cipherSaltLength = 16
	cipherIVLength   = 12
	cipherTagLength  = 16
	cipherKeyLength  = 32

	// scrypt cost parameters used for every envelope.
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

// ErrDecrypt is returned for any envelope that cannot be opened.
var ErrDecrypt = errors.New("decryption failed")

// Cipher encrypts short strings under a secret with AES-256-GCM.
//
// Envelopes have the form hex(salt):hex(iv):hex(tag):hex(ciphertext). Each
// call to Encrypt draws a fresh salt and IV, and the AES key is derived from
// the secret and that salt with scrypt.
type Cipher struct {
	secret []byte
}

func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher secret must not be empty")
	}
	return &Cipher{secret: []byte(secret)}, nil
}

// Encrypt seals plaintext into a new envelope.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, cipherSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, cipherIVLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	// Seal appends the tag to the ciphertext; the envelope stores it separately.
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-cipherTagLength], sealed[len(sealed)-cipherTagLength:]

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ct),
	}, ":"), nil
}

// Decrypt opens an envelope produced by Encrypt. Malformed or tampered
// envelopes return an error wrapping ErrDecrypt.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 4 {
		return "", fmt.Errorf("%w: expected 4 fields, got %d", ErrDecrypt, len(parts))
	}

	salt, err := decodeField(parts[0], cipherSaltLength, "salt")
	if err != nil {
		return "", err
	}
	iv, err := decodeField(parts[1], cipherIVLength, "iv")
	if err != nil {
		return "", err
	}
	tag, err := decodeField(parts[2], cipherTagLength, "tag")
	if err != nil {
		return "", err
	}
	ct, err := decodeField(parts[3], -1, "ciphertext")
	if err != nil {
		return "", err
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}

func (c *Cipher) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(c.secret, salt, scryptN, scryptR, scryptP, cipherKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, cipherIVLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// decodeField hex-decodes one envelope field. A negative size accepts any length.
func decodeField(field string, size int, name string) ([]byte, error) {
	b, err := hex.DecodeString(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid hex", ErrDecrypt, name)
	}
	if size >= 0 && len(b) != size {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrDecrypt, name, size, len(b))
	}
	return b, nil
}
