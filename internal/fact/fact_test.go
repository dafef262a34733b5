package fact

import (
	"errors"
	"fmt"
	"testing"
)

type stubFact struct{}

func (stubFact) Description() string     { return "stub" }
func (stubFact) Summary() (string, bool) { return "", false }

func TestNewKeyKeepsType(t *testing.T) {
	key := NewKey[stubFact]("stub")
	if got := key.Type(); got != "stub" {
		t.Fatalf("key.Type() = %q, want %q", got, "stub")
	}
	if got := key.String(); got != "stub" {
		t.Fatalf("key.String() = %q, want %q", got, "stub")
	}
}

func TestNewKeyRejectsEmptyType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty fact type")
		}
	}()
	NewKey[stubFact]("")
}

func TestUnavailableMatchesSentinel(t *testing.T) {
	err := Unavailable("profile has no %s", "phases")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("errors.Is(%v, ErrUnavailable) = false", err)
	}
	if got, want := err.Error(), "fact unavailable: profile has no phases"; got != want {
		t.Fatalf("err.Error() = %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("derive: %w", err)
	if !IsUnavailable(wrapped) {
		t.Fatal("IsUnavailable should see through wrapping")
	}
	if IsUnavailable(errors.New("boom")) {
		t.Fatal("IsUnavailable should not match unrelated errors")
	}
}
