// Package simhash fingerprints portfolio snapshots so a re-scrape can tell
// a redesign or a content rewrite from an unchanged site.
package simhash

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strconv"
	"strings"
)

// ChangeThreshold is the Hamming distance above which two snapshots are
// considered different.
const ChangeThreshold = 3

// Fingerprint is a 64-bit SimHash.
type Fingerprint uint64

// Sum computes the SimHash of tokens. Each token is hashed with FNV-64a
// and votes on every bit.
func Sum(tokens []string) Fingerprint {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp Fingerprint
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// OfText fingerprints the lowercased words of text.
func OfText(text string) Fingerprint {
	return Sum(strings.Fields(strings.ToLower(text)))
}

// Distance returns the Hamming distance to o.
func (f Fingerprint) Distance(o Fingerprint) int {
	return bits.OnesCount64(uint64(f ^ o))
}

// Similar reports whether the distance to o is at most threshold.
func (f Fingerprint) Similar(o Fingerprint, threshold int) bool {
	return f.Distance(o) <= threshold
}

// String renders f as 16 hex digits; BSON has no unsigned 64-bit type.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Parse reads a fingerprint written by String.
func Parse(s string) (Fingerprint, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("simhash: parse %q: %w", s, err)
	}
	return Fingerprint(v), nil
}
