package storage

import (
	"regexp"
	"testing"
	"time"
)

func TestIsAllowedImageType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/gif", true},
		{"image/webp", true},
		{"image/svg+xml", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"image/bmp", false},
		{"application/pdf", false},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := IsAllowedImageType(tt.contentType); got != tt.want {
				t.Errorf("IsAllowedImageType(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestPrefixFor(t *testing.T) {
	tests := map[string]string{
		"icon":      "icons",
		"thumbnail": "thumbnails",
		"":          "uploads",
		"banner":    "uploads",
	}
	for kind, want := range tests {
		if got := PrefixFor(kind); got != want {
			t.Errorf("PrefixFor(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	got := ObjectKey("icons", "Logo.PNG", now)
	if !regexp.MustCompile(`^icons/1700000000123-[0-9a-f]{8}\.png$`).MatchString(got) {
		t.Errorf("ObjectKey() = %q", got)
	}

	if got := ObjectKey("uploads", "noext", now); !regexp.MustCompile(`\.bin$`).MatchString(got) {
		t.Errorf("ObjectKey() without extension = %q, want .bin suffix", got)
	}

	if ObjectKey("icons", "a.png", now) == ObjectKey("icons", "a.png", now) {
		t.Error("ObjectKey() should be unique per call")
	}
}
