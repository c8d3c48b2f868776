package contentkey

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain URL untouched", "https://cdn.example.com/s1.png", "https://cdn.example.com/s1.png"},
		{"fragment stripped", "https://cdn.example.com/s1.png#v2", "https://cdn.example.com/s1.png"},
		{"whitespace trimmed", "  https://cdn.example.com/s1.png\n", "https://cdn.example.com/s1.png"},
		{"fragment and whitespace", " https://cdn.example.com/s1.png#cache ", "https://cdn.example.com/s1.png"},
		{"data URL header stripped", "data:image/png;base64,iVBORw0KGgo=", "iVBORw0KGgo="},
		{"data URL uppercase scheme", "DATA:image/png;base64,iVBORw0KGgo=", "iVBORw0KGgo="},
		{"data URL without base64 marker", "data:image/svg+xml,<svg/>", "<svg/>"},
		{"malformed data URL keeps whole reference", "data:image/png;base64", "data:image/png;base64"},
		{"data URL with empty payload keeps whole reference", "data:image/png;base64,", "data:image/png;base64,"},
		{"bare fragment keeps whole reference", "#frag", "#frag"},
		{"query kept", "https://cdn.example.com/s1.png?w=1200", "https://cdn.example.com/s1.png?w=1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.raw); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalMediaTypeIndependence(t *testing.T) {
	// Same payload, different declared media types: the key must match.
	a := Canonical("data:image/png;base64,AAAABBBB")
	b := Canonical("data:image/jpeg;base64,AAAABBBB")
	if a != b {
		t.Errorf("keys differ for identical payloads: %q vs %q", a, b)
	}
}

func TestCanonicalStability(t *testing.T) {
	refs := []string{
		"https://cdn.example.com/s1.png#v2",
		"data:image/png;base64,iVBORw0KGgo=",
		"not a url at all",
	}
	for _, ref := range refs {
		if first, second := Canonical(ref), Canonical(ref); first != second {
			t.Errorf("Canonical(%q) not stable: %q vs %q", ref, first, second)
		}
	}
}

func TestCanonicalDistinctImagesDistinctKeys(t *testing.T) {
	a := Canonical("data:image/png;base64,AAAA")
	b := Canonical("data:image/png;base64,BBBB")
	if a == b {
		t.Errorf("distinct payloads collided on key %q", a)
	}
}

func TestCanonicalNeverEmptyForNonEmptyInput(t *testing.T) {
	inputs := []string{
		"data:image/png;base64,",
		"data:",
		"#only-a-fragment",
		"x",
	}
	for _, in := range inputs {
		if got := Canonical(in); got == "" {
			t.Errorf("Canonical(%q) = empty key", in)
		}
	}
}
