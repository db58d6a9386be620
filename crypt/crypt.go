// Package crypt seals and unseals byte sequences with an owner key.
// It is used to protect the head chunks of private-scope blobs.
package crypt

import (
	"crypto/cipher"
	"crypto/sha256"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of an owner key in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrDecrypt is returned by Unseal when the key is wrong or the
// sealed data has been tampered with.
var ErrDecrypt = errors.New("cannot decrypt: wrong key or corrupt data")

// Sealer transforms bytes on their way into and out of the network.
// Unseal is the inverse of Seal.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Unseal(sealed []byte) ([]byte, error)
}

type keySealer struct {
	key  [KeySize]byte
	aead cipher.AEAD
}

// NewSealer produces a Sealer bound to the given owner key, using
// XChaCha20-Poly1305.
//
// The nonce is derived from the key and the plaintext, so sealing
// identical bytes under the same key yields identical output. Content
// addressing requires this: a private blob's head chunk must hash to
// the same address every time the same owner writes the same bytes.
func NewSealer(key [KeySize]byte) Sealer {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		// the key is always KeySize bytes
		panic(err)
	}
	return &keySealer{key: key, aead: aead}
}

// Seal encrypts and authenticates plaintext, prefixing the derived nonce.
func (s *keySealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := s.nonce(plaintext)
	out := make([]byte, len(nonce), len(nonce)+len(plaintext)+s.aead.Overhead())
	copy(out, nonce)
	return s.aead.Seal(out, nonce, plaintext, nil), nil
}

// Unseal reverses Seal, failing with ErrDecrypt if the key is wrong
// or the data has been altered.
func (s *keySealer) Unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errors.Wrap(ErrDecrypt, "sealed data too short")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}
	return plaintext, nil
}

func (s *keySealer) nonce(plaintext []byte) []byte {
	h := sha256.New()
	h.Write(s.key[:])
	h.Write(plaintext)
	return h.Sum(nil)[:chacha20poly1305.NonceSizeX]
}
