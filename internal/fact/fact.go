package fact

// Type is the stable identity of a fact kind.
type Type string

func (t Type) String() string { return string(t) }

// Fact is an immutable value derived during one analysis run.
type Fact interface {
	// Description explains what the fact represents.
	Description() string
	// Summary returns a one-line summary, or false when there is nothing
	// notable to report.
	Summary() (string, bool)
}

// Key binds a fact Type to the Go type its provider produces.
type Key[T Fact] struct {
	typ Type
}

// NewKey returns the key for fact type t.
func NewKey[T Fact](t Type) Key[T] {
	if t == "" {
		panic("fact: empty fact type")
	}
	return Key[T]{typ: t}
}

// Type returns the fact type the key refers to.
func (k Key[T]) Type() Type { return k.typ }

func (k Key[T]) String() string { return string(k.typ) }
