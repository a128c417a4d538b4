// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vss.
//
// go-vss is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package verification

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/jeremyhahn/go-vss/pkg/codec"
)

// MinKeyBits is the smallest MAC key size GenerateKey will produce.
const MinKeyBits = 256

// GenerateKey returns a fresh random MAC key of at least MinKeyBits,
// base64 encoded for storage in session files.
func GenerateKey(bits int) (string, error) {
	if bits < MinKeyBits {
		bits = MinKeyBits
	}
	if bits%8 != 0 {
		return "", fmt.Errorf("%w: %d bits", ErrInvalidKeyLength, bits)
	}
	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("verification: reading random key: %w", err)
	}
	return codec.StrToBase64(key), nil
}

// DecodeKey converts a base64 key produced by GenerateKey to raw bytes.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := codec.Base64ToStr(encoded)
	if err != nil {
		return nil, fmt.Errorf("verification: decoding MAC key: %w", err)
	}
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	return key, nil
}

// GenerateMAC returns the base64 HMAC-SHA256 tag of message under key.
func GenerateMAC(message string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return codec.StrToBase64(mac.Sum(nil))
}

// VerifyMAC reports whether tag is the MAC of message under key. The
// comparison runs in constant time.
func VerifyMAC(message string, key []byte, tag string) bool {
	expected := GenerateMAC(message, key)
	return hmac.Equal([]byte(expected), []byte(tag))
}
