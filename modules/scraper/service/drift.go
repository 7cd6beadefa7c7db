package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// StructureHash canonicalises a representative fragment of a scrape into a
// stable outline (tag names only, not content) and hashes it, per spec §4.2
// "Structural drift". Content changes (new job titles) don't move the hash;
// layout/markup changes do.
func StructureHash(htmlFragments []string) string {
	var outline strings.Builder
	for _, fragment := range htmlFragments {
		outline.WriteString(tagOutline(fragment))
	}
	sum := sha256.Sum256([]byte(outline.String()))
	return hex.EncodeToString(sum[:])
}

// tagOutline extracts a lowercase, whitespace-free sequence of HTML tag
// names, ignoring attributes and text content.
func tagOutline(html string) string {
	var sb strings.Builder
	inTag := false
	tagStart := 0
	for i, r := range html {
		switch r {
		case '<':
			inTag = true
			tagStart = i + 1
		case '>':
			if inTag {
				tag := html[tagStart:i]
				tag = strings.TrimPrefix(tag, "/")
				tag = strings.TrimSuffix(tag, "/")
				if sp := strings.IndexAny(tag, " \t\n"); sp >= 0 {
					tag = tag[:sp]
				}
				if tag != "" {
					sb.WriteString(strings.ToLower(tag))
					sb.WriteByte(',')
				}
			}
			inTag = false
		}
	}
	return sb.String()
}

// DriftRatio is a Hamming-approximation by nibble comparison between two hex
// digest strings, per spec §4.2: the fraction of differing nibbles. A ratio
// above 0.30 should trigger a warning; the caller decides, this just
// computes it.
func DriftRatio(previous, current string) float64 {
	if previous == "" || current == "" {
		return 0
	}
	n := len(previous)
	if len(current) < n {
		n = len(current)
	}
	if n == 0 {
		return 0
	}
	diff := 0
	for i := 0; i < n; i++ {
		if previous[i] != current[i] {
			diff++
		}
	}
	return float64(diff) / float64(n)
}
