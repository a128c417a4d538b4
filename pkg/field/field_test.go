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

package field

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedGCD(t *testing.T) {
	tests := []struct {
		a, b int64
		g    int64
	}{
		{240, 46, 2},
		{46, 240, 2},
		{17, 5, 1},
		{12, 0, 12},
		{0, 9, 9},
		{-15, 10, 5},
	}

	for _, tt := range tests {
		a, b := big.NewInt(tt.a), big.NewInt(tt.b)
		g, x, y := ExtendedGCD(a, b)
		assert.Equal(t, tt.g, g.Int64(), "gcd(%d, %d)", tt.a, tt.b)

		// Bezout identity: a*x + b*y == g
		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		assert.Equal(t, 0, lhs.Cmp(g), "a*x + b*y for (%d, %d)", tt.a, tt.b)
	}
}

func TestModularInverse(t *testing.T) {
	prime := big.NewInt(8191) // 2^13 - 1

	for _, v := range []int64{1, 2, 3, 100, 8190, -1, -4095, 8192 + 7} {
		inv, err := ModularInverse(big.NewInt(v), prime)
		require.NoError(t, err)
		assert.True(t, inv.Sign() >= 0 && inv.Cmp(prime) < 0, "inverse of %d out of range", v)

		prod := new(big.Int).Mul(big.NewInt(v), inv)
		prod.Mod(prod, prime)
		assert.Equal(t, int64(1), prod.Int64(), "v * inv(v) for %d", v)
	}
}

func TestModularInverse_NotInvertible(t *testing.T) {
	_, err := ModularInverse(big.NewInt(0), big.NewInt(8191))
	assert.True(t, errors.Is(err, ErrNotInvertible))

	_, err = ModularInverse(big.NewInt(6), big.NewInt(9))
	assert.True(t, errors.Is(err, ErrNotInvertible))

	_, err = ModularInverse(big.NewInt(3), big.NewInt(1))
	assert.True(t, errors.Is(err, ErrInvalidModulus))
}

func TestPrimes_SortedAndComplete(t *testing.T) {
	table := Primes()
	require.Len(t, table, 14)
	for i := 1; i < len(table); i++ {
		assert.Equal(t, -1, table[i-1].Cmp(table[i]), "table not ascending at %d", i)
	}
	assert.Equal(t, int64(8191), table[0].Int64())
	assert.Equal(t, 1279, table[len(table)-1].BitLen())

	// Mutating the copy must not affect the table.
	table[0].SetInt64(4)
	assert.Equal(t, int64(8191), Primes()[0].Int64())
}

func TestPrimeAbove(t *testing.T) {
	p, err := PrimeAbove(big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(8191), p.Int64())

	// Strictly greater: a bound equal to a table entry selects the next one.
	p, err = PrimeAbove(big.NewInt(8191))
	require.NoError(t, err)
	assert.Equal(t, int64(131071), p.Int64())

	// 2^256 lies between 2^127-1 and 2^256+297.
	bound := new(big.Int).Lsh(big.NewInt(1), 256)
	p, err = PrimeAbove(bound)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(offsetPower(256, 297)))

	// Every element of the table is prime.
	for _, q := range Primes() {
		assert.True(t, q.ProbablyPrime(20), "%s is not prime", q)
	}
}

func TestPrimeAbove_NoPrime(t *testing.T) {
	bound := new(big.Int).Lsh(big.NewInt(1), 1279)
	_, err := PrimeAbove(bound)
	assert.True(t, errors.Is(err, ErrNoPrime))

	_, err = PrimeAbove(nil)
	assert.True(t, errors.Is(err, ErrNoPrime))
}
