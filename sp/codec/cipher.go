package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// IVStrategy selects how the CBC initialization vector is chosen.
type IVStrategy string

const (
	// IVRandom draws a fresh IV for every encode and prepends it to the
	// ciphertext. Two encodings of the same session differ.
	IVRandom IVStrategy = "random"
	// IVDerived uses one IV derived from the key for every message. The same
	// session always encrypts to the same value, which leaks equality of
	// session states to anyone watching cookies. Kept for deployments that
	// need the legacy behavior.
	IVDerived IVStrategy = "derived"
)

var (
	errShortCiphertext = errors.New("ciphertext too short")
	errBlockSize       = errors.New("ciphertext is not a multiple of the block size")
	errPadding         = errors.New("invalid padding")
)

type blockCipher struct {
	block cipher.Block
	iv    IVStrategy
	fixed []byte
}

func newBlockCipher(key []byte, iv IVStrategy) (*blockCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	bc := &blockCipher{block: block, iv: iv}
	switch iv {
	case IVRandom:
	case IVDerived:
		bc.fixed = make([]byte, aes.BlockSize)
		r := hkdf.New(sha256.New, key, nil, []byte("yummy|iv"))
		if _, err := io.ReadFull(r, bc.fixed); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown iv strategy %q", iv)
	}
	return bc, nil
}

func (bc *blockCipher) seal(plaintext []byte) ([]byte, error) {
	padded := pad(plaintext)
	if bc.iv == IVDerived {
		out := make([]byte, len(padded))
		cipher.NewCBCEncrypter(bc.block, bc.fixed).CryptBlocks(out, padded)
		return out, nil
	}
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	cipher.NewCBCEncrypter(bc.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

func (bc *blockCipher) open(ciphertext []byte) ([]byte, error) {
	iv := bc.fixed
	if bc.iv == IVRandom {
		if len(ciphertext) < 2*aes.BlockSize {
			return nil, errShortCiphertext
		}
		iv, ciphertext = ciphertext[:aes.BlockSize], ciphertext[aes.BlockSize:]
	}
	if len(ciphertext) == 0 {
		return nil, errShortCiphertext
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errBlockSize
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(bc.block, iv).CryptBlocks(out, ciphertext)
	return unpad(out)
}

// pad applies PKCS#7 padding.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errPadding
		}
	}
	return b[:len(b)-n], nil
}
