package snapshot

import (
	"errors"
	"testing"
)

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr error
	}{
		{"titled snapshot is valid", "Super App", nil},
		{"missing title rejected", "", ErrMissingTitle},
		{"whitespace title rejected", "   \t", ErrMissingTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Snapshot{EntityID: "app-1", Store: "ios", Title: tt.title}
			err := s.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSnapshotKey(t *testing.T) {
	s := &Snapshot{EntityID: "app-1", Store: "ios", Title: "Super App"}
	want := EntityKey{Store: "ios", EntityID: "app-1"}
	if got := s.Key(); got != want {
		t.Errorf("Key() = %+v, want %+v", got, want)
	}

	other := &Snapshot{EntityID: "app-1", Store: "android", Title: "Super App"}
	if s.Key() == other.Key() {
		t.Error("same entity id in different stores must not share a key")
	}
}

func TestAllScreenshotClasses(t *testing.T) {
	classes := AllScreenshotClasses()
	if len(classes) != 4 {
		t.Fatalf("AllScreenshotClasses() returned %d classes, want 4", len(classes))
	}
	seen := map[ScreenshotClass]bool{}
	for _, c := range classes {
		if seen[c] {
			t.Errorf("duplicate class %s", c)
		}
		seen[c] = true
	}
}
