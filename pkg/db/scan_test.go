package db

import (
	"regexp"
	"testing"
)

func TestGenerateShareSlug(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{40}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		slug, err := generateShareSlug()
		if err != nil {
			t.Fatalf("Unexpected error occured, err=%+v", err)
		}
		if !pattern.MatchString(slug) {
			t.Fatalf("Unexpected slug format: got=%s", slug)
		}
		if seen[slug] {
			t.Fatalf("Unexpected duplicate slug: got=%s", slug)
		}
		seen[slug] = true
	}
}
