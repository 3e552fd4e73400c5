package clipboard

import (
	"errors"
	"testing"
)

func TestSystem_UsesWriteAll(t *testing.T) {
	old := writeAll
	defer func() { writeAll = old }()

	var got string
	writeAll = func(s string) error {
		got = s
		return nil
	}

	if err := System().WriteAll("bio"); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if got != "bio" {
		t.Errorf("Expected bio, got %q", got)
	}
}

func TestDisabled(t *testing.T) {
	if err := Disabled().WriteAll("x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}
