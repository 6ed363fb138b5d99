package embedding

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

var wordRun = regexp.MustCompile(`\w+`)

// maxArrayIndex is the largest integer key JavaScript treats as an array index (2^32 - 2).
const maxArrayIndex = 1<<32 - 2

// dottedCapitalI applies the full Unicode lowercase mapping of U+0130 ("i" plus a combining dot
// above). strings.ToLower uses the simple mapping to a bare "i", which joins it to the next letters.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// Tokenize lowercases text and returns its maximal runs of word characters [0-9A-Za-z_].
func Tokenize(text string) []string {
	return wordRun.FindAllString(strings.ToLower(dottedCapitalI.Replace(text)), -1)
}

// TokenOrder returns the distinct tokens and their frequencies. Order follows JavaScript
// object-key enumeration: canonical array-index tokens ("0", "7", "2024") first in ascending
// numeric order, then every other token in first-occurrence order. The order decides which
// token wins a shared bucket, so it is part of the embedding's definition.
func TokenOrder(tokens []string) ([]string, map[string]int) {
	counts := make(map[string]int, len(tokens))
	var indices []string
	var others []string
	for _, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			if _, ok := arrayIndex(tok); ok {
				indices = append(indices, tok)
			} else {
				others = append(others, tok)
			}
		}
		counts[tok]++
	}
	sort.SliceStable(indices, func(i, j int) bool {
		a, _ := arrayIndex(indices[i])
		b, _ := arrayIndex(indices[j])
		return a < b
	})
	return append(indices, others...), counts
}

func arrayIndex(tok string) (uint64, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil || n > maxArrayIndex {
		return 0, false
	}
	return n, true
}

// HashString returns the polynomial rolling hash h = 31*h + c over the UTF-16 code units of s,
// wrapping to a signed 32-bit integer at every step.
func HashString(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
