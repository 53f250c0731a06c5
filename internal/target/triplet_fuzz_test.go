package target

import (
	"strings"
	"testing"
)

// FuzzParseTriplet checks that every accepted triplet re-serializes to its input.
func FuzzParseTriplet(f *testing.F) {
	f.Add("x86_64-unknown-linux-gnu")
	f.Add("armv7-unknown-linux-gnueabihf")
	f.Add("x86_64-apple-darwin")
	f.Add("a-b")
	f.Add("---")
	f.Add("")
	f.Add("wasm32-unknown-unknown-extra-segments")

	f.Fuzz(func(t *testing.T, s string) {
		tr, err := ParseTriplet(s)
		if err != nil {
			return
		}
		if got := tr.String(); got != strings.TrimSpace(s) {
			t.Fatalf("round trip of %q produced %q", s, got)
		}
		if _, err := MapArch(tr, Permissive); err != nil {
			t.Fatalf("permissive mapping failed for %q: %v", s, err)
		}
	})
}
