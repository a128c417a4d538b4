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

import "errors"

var (
	// ErrEmptyInput indicates an empty message was given for integer conversion.
	ErrEmptyInput = errors.New("codec: empty input")

	// ErrInvalidValue indicates a value that cannot be encoded.
	ErrInvalidValue = errors.New("codec: invalid value")

	// ErrMalformedList indicates text that is not a valid serialized structure.
	ErrMalformedList = errors.New("codec: malformed list")

	// ErrMalformedBase64 indicates text that is not valid standard base64.
	ErrMalformedBase64 = errors.New("codec: malformed base64")
)
