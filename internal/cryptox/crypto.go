// Package cryptox implements the file encryption service backing the
// document store. Files are sealed with AES-256-GCM under a key derived via
// argon2id from a randomly generated seed held in the secure settings store.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"

	"github.com/docstash/docstash/internal/settings"
)

const (
	keySeedSetting = "encryption_key_seed"
	keySaltSetting = "encryption_key_salt"

	nonceSize = 12
	keySize   = 32
)

// ErrKeyNotInitialized indicates an encrypt/decrypt call before
// EnsureKeyInitialized.
var ErrKeyNotInitialized = errors.New("cryptox: key not initialized")

// Service encrypts and decrypts document files. Key material is loaded once
// by EnsureKeyInitialized and held in memory for the process lifetime.
type Service struct {
	store *settings.Store
	key   []byte
}

// NewService creates a service backed by the given settings store.
func NewService(store *settings.Store) *Service {
	return &Service{store: store}
}

// IsReady reports whether the encryption key is loaded.
func (s *Service) IsReady() bool {
	return s.key != nil
}

// EnsureKeyInitialized loads the key material, generating and persisting a
// fresh seed and salt on first use. It returns true when first-time setup
// was performed.
func (s *Service) EnsureKeyInitialized() (bool, error) {
	if s.key != nil {
		return false, nil
	}

	seedHex, err := s.store.Get(keySeedSetting)
	if err != nil {
		return false, fmt.Errorf("cryptox: failed to read key seed: %w", err)
	}
	saltHex, err := s.store.Get(keySaltSetting)
	if err != nil {
		return false, fmt.Errorf("cryptox: failed to read key salt: %w", err)
	}

	firstRun := seedHex == "" || saltHex == ""
	if firstRun {
		seed := make([]byte, keySize)
		if _, err := rand.Read(seed); err != nil {
			return false, fmt.Errorf("cryptox: failed to generate key seed: %w", err)
		}
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return false, fmt.Errorf("cryptox: failed to generate key salt: %w", err)
		}

		seedHex = hex.EncodeToString(seed)
		saltHex = hex.EncodeToString(salt)
		if err := s.store.Set(keySeedSetting, seedHex); err != nil {
			return false, fmt.Errorf("cryptox: failed to persist key seed: %w", err)
		}
		if err := s.store.Set(keySaltSetting, saltHex); err != nil {
			return false, fmt.Errorf("cryptox: failed to persist key salt: %w", err)
		}
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return false, fmt.Errorf("cryptox: corrupt key seed: %w", err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("cryptox: corrupt key salt: %w", err)
	}

	s.key = argon2.IDKey(seed, salt, 1, 64*1024, 4, keySize)
	return firstRun, nil
}

// EncryptBytes seals plaintext and returns nonce || ciphertext.
func (s *Service) EncryptBytes(plaintext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBytes opens a nonce || ciphertext blob produced by EncryptBytes.
func (s *Service) DecryptBytes(data []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(data) < nonceSize {
		return nil, errors.New("cryptox: ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: decryption failed: %w", err)
	}
	return plaintext, nil
}

// EncryptFile seals the source file into dest (mode 0600).
func (s *Service) EncryptFile(source, dest string) error {
	plaintext, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("cryptox: failed to read %s: %w", source, err)
	}

	sealed, err := s.EncryptBytes(plaintext)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("cryptox: failed to create destination directory: %w", err)
	}
	if err := os.WriteFile(dest, sealed, 0o600); err != nil {
		return fmt.Errorf("cryptox: failed to write %s: %w", dest, err)
	}
	return nil
}

// DecryptFile opens the encrypted source file into dest (mode 0600).
func (s *Service) DecryptFile(source, dest string) error {
	plaintext, err := s.DecryptFileBytes(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("cryptox: failed to create destination directory: %w", err)
	}
	if err := os.WriteFile(dest, plaintext, 0o600); err != nil {
		return fmt.Errorf("cryptox: failed to write %s: %w", dest, err)
	}
	return nil
}

// DecryptFileBytes opens the encrypted source file in memory. The thumbnail
// path uses this so decrypted bytes go straight into the cache.
func (s *Service) DecryptFileBytes(source string) ([]byte, error) {
	sealed, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to read %s: %w", source, err)
	}
	return s.DecryptBytes(sealed)
}

func (s *Service) gcm() (cipher.AEAD, error) {
	if s.key == nil {
		return nil, ErrKeyNotInitialized
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
