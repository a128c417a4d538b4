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

// Package field provides the prime-field arithmetic used by the secret
// sharing engine: the extended Euclidean algorithm, modular inversion and
// selection of a public prime modulus from a fixed table.
package field

import (
	"fmt"
	"math/big"
	"sort"
)

var one = big.NewInt(1)

// mersenneExponents are the exponents e for which 2^e - 1 is prime and that
// are included in the prime table.
var mersenneExponents = []uint{13, 17, 19, 31, 61, 89, 107, 127, 521, 607, 1279}

// primes is the ascending prime table, built once at init.
var primes []*big.Int

func init() {
	primes = generatePrimes()
}

func generatePrimes() []*big.Int {
	table := []*big.Int{
		offsetPower(256, 297),
		offsetPower(320, 27),
		offsetPower(384, 231),
	}
	for _, exp := range mersenneExponents {
		table = append(table, offsetPower(exp, -1))
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Cmp(table[j]) < 0
	})
	return table
}

// offsetPower returns 2^exp + offset.
func offsetPower(exp uint, offset int64) *big.Int {
	p := new(big.Int).Lsh(one, exp)
	return p.Add(p, big.NewInt(offset))
}

// Primes returns a copy of the prime table in ascending order.
func Primes() []*big.Int {
	out := make([]*big.Int, len(primes))
	for i, p := range primes {
		out[i] = new(big.Int).Set(p)
	}
	return out
}

// PrimeAbove returns the least prime in the table that is strictly greater
// than bound. ErrNoPrime is returned when bound is not below the largest
// table entry.
func PrimeAbove(bound *big.Int) (*big.Int, error) {
	if bound == nil {
		return nil, fmt.Errorf("%w: nil bound", ErrNoPrime)
	}
	for _, p := range primes {
		if p.Cmp(bound) > 0 {
			return new(big.Int).Set(p), nil
		}
	}
	return nil, fmt.Errorf("%w: bound has %d bits, largest prime has %d bits",
		ErrNoPrime, bound.BitLen(), primes[len(primes)-1].BitLen())
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b).
// Uses the iterative form of the extended Euclidean algorithm.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	// Normalize so the gcd is non-negative.
	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModularInverse returns the unique value in [0, prime) whose product with
// num is 1 mod prime. num may be negative. ErrNotInvertible is returned when
// gcd(num, prime) != 1.
func ModularInverse(num, prime *big.Int) (*big.Int, error) {
	if prime == nil || prime.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}
	n := new(big.Int).Mod(num, prime)
	g, x, _ := ExtendedGCD(n, prime)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, modulus) = %s", ErrNotInvertible, n, g)
	}
	return x.Mod(x, prime), nil
}
