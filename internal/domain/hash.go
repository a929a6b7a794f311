package domain

import (
	"crypto/md5" //nolint:gosec // dedup fingerprint, not a security boundary
	"encoding/hex"
	"strings"
)

// URLHash returns the hex digest of the raw URL, used for exact dedup.
func URLHash(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// FuzzyHash returns the hex digest of normalized company+title.
// The two fields are concatenated without a separator; this matches the
// fingerprints of existing data and must not change without a migration.
func FuzzyHash(company, title string) string {
	norm := strings.ToLower(strings.TrimSpace(company)) + strings.ToLower(strings.TrimSpace(title))
	sum := md5.Sum([]byte(norm)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
