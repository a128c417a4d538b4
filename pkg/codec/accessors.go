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

package codec

import (
	"fmt"
	"math/big"
)

// AsList asserts that v is a list of exactly n elements (n < 0 accepts any
// length).
func AsList(v any, n int) ([]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected list, got %T", ErrMalformedList, v)
	}
	if n >= 0 && len(list) != n {
		return nil, fmt.Errorf("%w: expected %d elements, got %d", ErrMalformedList, n, len(list))
	}
	return list, nil
}

// AsInt asserts that v is an integer.
func AsInt(v any) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: expected integer, got %T", ErrMalformedList, v)
	}
	return n, nil
}

// AsString asserts that v is a string.
func AsString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrMalformedList, v)
	}
	return s, nil
}

// AsSmallInt asserts that v is an integer that fits in an int.
func AsSmallInt(v any) (int, error) {
	n, err := AsInt(v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || int64(int(n.Int64())) != n.Int64() {
		return 0, fmt.Errorf("%w: integer %s out of range", ErrMalformedList, n)
	}
	return int(n.Int64()), nil
}
