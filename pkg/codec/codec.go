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

// Package codec converts between the representations a secret and its shares
// take on their way through the protocol: raw message bytes, big integers,
// base64 text and the canonical textual form of nested share structures.
//
// Nested structures are built from three kinds of values:
//
//   - *big.Int for integers of any size
//   - string
//   - []any holding further values
//
// ListToStr renders them as a JSON array in which integers are emitted as
// bare JSON numbers of arbitrary length. StrToList parses that text back with
// exact structural round-trip, so the same value always serializes to the
// same string.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// StrToNum interprets msg as a big-endian unsigned integer. Leading zero
// bytes do not survive a round trip through NumToStr.
func StrToNum(msg []byte) (*big.Int, error) {
	if len(msg) == 0 {
		return nil, ErrEmptyInput
	}
	return new(big.Int).SetBytes(msg), nil
}

// NumToStr returns the minimal big-endian byte encoding of num.
func NumToStr(num *big.Int) ([]byte, error) {
	if num == nil {
		return nil, fmt.Errorf("%w: nil integer", ErrInvalidValue)
	}
	if num.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative integer", ErrInvalidValue)
	}
	return num.Bytes(), nil
}

// StrToBase64 encodes msg using standard base64 with padding.
func StrToBase64(msg []byte) string {
	return base64.StdEncoding.EncodeToString(msg)
}

// Base64ToStr decodes standard base64 text.
func Base64ToStr(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBase64, err)
	}
	return data, nil
}

// ListToStr serializes a nested structure to its canonical text.
// Accepted leaves are *big.Int, big.Int, int, int64 and string.
func ListToStr(v any) (string, error) {
	normalized, err := normalize(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// StrToList parses text produced by ListToStr. Integers come back as
// *big.Int, strings as string and arrays as []any.
func StrToList(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedList)
	}
	return denormalize(raw)
}

// normalize converts supported leaves into values encoding/json renders
// canonically.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return nil, fmt.Errorf("%w: nil integer", ErrInvalidValue)
		}
		return json.Number(val.String()), nil
	case big.Int:
		return json.Number(val.String()), nil
	case int:
		return json.Number(fmt.Sprintf("%d", val)), nil
	case int64:
		return json.Number(fmt.Sprintf("%d", val)), nil
	case string:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalize(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
	}
}

func denormalize(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(val.String(), 10)
		if !ok {
			return nil, fmt.Errorf("%w: non-integer number %q", ErrMalformedList, val)
		}
		return n, nil
	case string:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			d, err := denormalize(elem)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported element %T", ErrMalformedList, v)
	}
}
