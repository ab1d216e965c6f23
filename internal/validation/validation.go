package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// WalletPattern matches a 20-byte hex account address with 0x prefix.
var WalletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSpace    = regexp.MustCompile(`\s+`)
	slugHyphens  = regexp.MustCompile(`-+`)
	maxTagLength = 50
)

// IsWalletAddress reports whether s is a well-formed account address.
func IsWalletAddress(s string) bool {
	return WalletPattern.MatchString(s)
}

// NormalizeWallet lowercases an address so comparisons are case-insensitive.
func NormalizeWallet(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slugify derives a URL-safe slug from a display name.
// Returns fallback if nothing usable remains.
func Slugify(name, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if s == "" {
		return fallback
	}
	return s
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateShortDescription enforces the one-line summary limit in characters.
func ValidateShortDescription(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// CleanList trims entries and drops blanks and duplicates, preserving order.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// CleanTags is CleanList with an upper bound on tag length.
func CleanTags(tags []string) []string {
	cleaned := CleanList(tags)
	out := cleaned[:0]
	for _, t := range cleaned {
		if utf8.RuneCountInString(t) <= maxTagLength {
			out = append(out, t)
		}
	}
	return out
}
