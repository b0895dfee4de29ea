package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const ivSize = 16

// Cipher encrypts and decrypts OAuth tokens with AES-256-GCM.
// The stored format is "hex(iv):hex(tag):hex(ciphertext)" with a random
// 16-byte IV per value and a detached 16-byte authentication tag.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %v", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Cipher{key: key}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)

	// Seal appends the tag to the ciphertext; store it detached.
	tagStart := len(sealed) - gcm.Overhead()
	ciphertext := sealed[:tagStart]
	tag := sealed[tagStart:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails closed: any malformed input or
// authentication-tag mismatch returns an error, never garbage plaintext.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return "", errors.New("malformed encrypted value")
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("malformed encrypted value")
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", errors.New("malformed encrypted value")
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", errors.New("malformed encrypted value")
	}
	if len(iv) != ivSize {
		return "", errors.New("malformed encrypted value")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}
	if len(tag) != gcm.Overhead() {
		return "", errors.New("malformed encrypted value")
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", errors.New("decryption failed: authentication tag mismatch")
	}

	return string(plaintext), nil
}
