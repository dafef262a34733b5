package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"buildlens/internal/fact"
)

func TestChainPushDoesNotAlias(t *testing.T) {
	base := Chain{"a"}.Push("b")
	left := base.Push("c")
	right := base.Push("d")

	if diff := cmp.Diff(Chain{"a", "b", "c"}, left); diff != "" {
		t.Fatalf("left chain mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Chain{"a", "b", "d"}, right); diff != "" {
		t.Fatalf("right chain mismatch (-want +got):\n%s", diff)
	}
	if len(base) != 2 {
		t.Fatalf("base chain mutated: %v", base)
	}
}

func TestChainCycle(t *testing.T) {
	c := Chain{"root", "a", "b"}
	if got := c.Cycle("a"); got.String() != "a -> b -> a" {
		t.Fatalf("Cycle(a) = %q", got)
	}
	if got := c.Cycle("zzz"); got != nil {
		t.Fatalf("Cycle(zzz) = %v, want nil", got)
	}
	if !c.Contains("root") || c.Contains(fact.Type("x")) {
		t.Fatalf("Contains misbehaves on %v", c)
	}
	if c.Top() != "b" || (Chain{}).Top() != "" {
		t.Fatalf("unexpected Top values")
	}
}
