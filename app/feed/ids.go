package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

// NewArticleID derives the article identifier from the canonical URL:
// "ART_" plus the first 12 hex characters of the URL's sha256 digest.
// Recomputing for the same URL always yields the same identifier.
func NewArticleID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "ART_" + hex.EncodeToString(sum[:])[:12]
}
