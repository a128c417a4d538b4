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

// Package sharing implements (n, k)-threshold Shamir secret sharing over a
// prime field.
//
// The secret is the constant term of a random polynomial of degree k-1:
//
//	f(x) = secret + c1*x + c2*x^2 + ... + c(k-1)*x^(k-1)  (mod prime)
//
// Share i is the point (i, f(i)) for i = 1..n. Any k shares with distinct x
// recover f(0) by Lagrange interpolation; k-1 shares reveal nothing about it.
package sharing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/jeremyhahn/go-vss/pkg/codec"
	"github.com/jeremyhahn/go-vss/pkg/field"
)

// MaxMessageLength is the longest secret message accepted, in bytes.
const MaxMessageLength = 150

// Reader is the source of polynomial coefficients. Tests may substitute it;
// production code must leave it as crypto/rand.
var Reader io.Reader = rand.Reader

// RandomPolynomial draws the k-1 non-constant coefficients uniformly from
// [0, prime).
func RandomPolynomial(k int, prime *big.Int) ([]*big.Int, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidThreshold, k)
	}
	if prime == nil || prime.Sign() <= 0 {
		return nil, ErrInvalidPrime
	}
	coeffs := make([]*big.Int, k-1)
	for i := range coeffs {
		c, err := rand.Int(Reader, prime)
		if err != nil {
			return nil, fmt.Errorf("failed to generate random coefficients: %w", err)
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

// EvaluatePolynomial returns the n points (x, f(x) mod prime) for x = 1..n
// of the polynomial with constant term secret and the given coefficients.
// Uses Horner's method: f(x) = secret + x(c1 + x(c2 + ... + x*c(k-1))).
func EvaluatePolynomial(secret *big.Int, coeffs []*big.Int, n int, prime *big.Int) []Share {
	shares := make([]Share, n)
	bx := new(big.Int)
	for i := 0; i < n; i++ {
		x := i + 1
		bx.SetInt64(int64(x))

		y := new(big.Int)
		for j := len(coeffs) - 1; j >= 0; j-- {
			y.Add(y, coeffs[j])
			y.Mul(y, bx)
			y.Mod(y, prime)
		}
		y.Add(y, secret)
		y.Mod(y, prime)

		shares[i] = Share{X: x, Y: y}
	}
	return shares
}

// GenerateShares splits msg into n shares with reconstruction threshold k.
func GenerateShares(msg []byte, n, k int, prime *big.Int) ([]Share, error) {
	if k < 2 || n < k {
		return nil, fmt.Errorf("%w: n=%d k=%d (need n >= k >= 2)", ErrInvalidThreshold, n, k)
	}
	if prime == nil || prime.Cmp(big.NewInt(int64(n))) <= 0 {
		return nil, fmt.Errorf("%w: modulus must exceed n=%d", ErrInvalidPrime, n)
	}
	if len(msg) > MaxMessageLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(msg))
	}

	secret, err := codec.StrToNum(msg)
	if err != nil {
		return nil, err
	}
	return GenerateSharesFromInt(secret, n, k, prime)
}

// GenerateSharesFromInt splits an integer secret, which must lie in
// [0, prime).
func GenerateSharesFromInt(secret *big.Int, n, k int, prime *big.Int) ([]Share, error) {
	if k < 2 || n < k {
		return nil, fmt.Errorf("%w: n=%d k=%d (need n >= k >= 2)", ErrInvalidThreshold, n, k)
	}
	if prime == nil || prime.Cmp(big.NewInt(int64(n))) <= 0 {
		return nil, fmt.Errorf("%w: modulus must exceed n=%d", ErrInvalidPrime, n)
	}
	if secret.Sign() < 0 || secret.Cmp(prime) >= 0 {
		return nil, fmt.Errorf("%w: secret has %d bits, modulus has %d bits",
			ErrSecretTooLarge, secret.BitLen(), prime.BitLen())
	}

	coeffs, err := RandomPolynomial(k, prime)
	if err != nil {
		return nil, err
	}
	return EvaluatePolynomial(secret, coeffs, n, prime), nil
}

// ReconstructSecret interpolates f(0) from the first k supplied shares. The
// order of the shares does not matter, but all supplied x values must be
// distinct.
func ReconstructSecret(shares []Share, k int, prime *big.Int) (*big.Int, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidThreshold, k)
	}
	if prime == nil || prime.Sign() <= 0 {
		return nil, ErrInvalidPrime
	}
	if len(shares) < k {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, k, len(shares))
	}

	seen := make(map[int]struct{}, len(shares))
	for i, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid share %d: %w", i, err)
		}
		if _, dup := seen[s.X]; dup {
			return nil, fmt.Errorf("%w: x=%d", ErrDuplicateX, s.X)
		}
		seen[s.X] = struct{}{}
	}
	points := shares[:k]

	secret := new(big.Int)
	numerator := new(big.Int)
	denominator := new(big.Int)
	tmp := new(big.Int)

	for i, si := range points {
		// Lagrange basis L_i(0) = prod_{j != i} (-x_j) / (x_i - x_j)
		numerator.SetInt64(1)
		denominator.SetInt64(1)
		xi := big.NewInt(int64(si.X))

		for j, sj := range points {
			if i == j {
				continue
			}
			xj := big.NewInt(int64(sj.X))

			numerator.Mul(numerator, tmp.Neg(xj))
			numerator.Mod(numerator, prime)

			denominator.Mul(denominator, tmp.Sub(xi, xj))
			denominator.Mod(denominator, prime)
		}

		inv, err := field.ModularInverse(denominator, prime)
		if err != nil {
			return nil, fmt.Errorf("lagrange basis for x=%d: %w", si.X, err)
		}

		term := new(big.Int).Mul(si.Y, numerator)
		term.Mul(term, inv)
		secret.Add(secret, term)
		secret.Mod(secret, prime)
	}

	return secret, nil
}

// ReconstructMessage reconstructs the secret and decodes it back into the
// original message bytes.
func ReconstructMessage(shares []Share, k int, prime *big.Int) ([]byte, error) {
	secret, err := ReconstructSecret(shares, k, prime)
	if err != nil {
		return nil, err
	}
	return codec.NumToStr(secret)
}
