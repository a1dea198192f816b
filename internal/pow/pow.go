// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pow verifies the proof-of-work solutions submitted against a
// PoW admission session: SHA-256(salt || nonce) interpreted as a
// big-endian 256-bit integer, checked against a difficulty-derived
// threshold.
package pow

import (
	"crypto/sha256"

	"github.com/holiman/uint256"
)

// maxUint256 is (2^256 - 1), the all-ones 256-bit value.
var maxUint256 = func() *uint256.Int {
	max := new(uint256.Int)
	return max.Not(max) // 0 -> all ones
}()

// Threshold returns (2^256 - 1) >> difficulty, the value a solution's
// hash must not exceed to be accepted.
func Threshold(difficulty uint) *uint256.Int {
	t := new(uint256.Int).Set(maxUint256)
	return t.Rsh(t, uint(difficulty))
}

// Verify reports whether nonce solves the proof-of-work challenge for
// the given salt hex bytes and difficulty, following spec.md §4.6
// exactly: H = SHA-256(salt_hex_bytes || nonce_utf8_bytes), accepted iff
// H <= (2^256-1) >> difficulty.
func Verify(saltHex []byte, nonce string, difficulty uint) bool {
	h := sha256.New()
	h.Write(saltHex)
	h.Write([]byte(nonce))
	digest := h.Sum(nil)

	value := new(uint256.Int).SetBytes(digest)
	return value.Cmp(Threshold(difficulty)) <= 0
}
