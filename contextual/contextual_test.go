package contextual_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/eventsender/contextual"
	"github.com/tailored-agentic-units/eventsender/value"
)

func structOf(pairs ...any) value.Struct {
	b := value.NewBuilder()
	for i := 0; i < len(pairs); i += 2 {
		v, err := value.FromInterface(pairs[i+1])
		if err != nil {
			panic(err)
		}
		b.Set(pairs[i].(string), v)
	}
	return b.Build()
}

func assertContext(t *testing.T, got, want value.Struct) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("got context %s, want %s", got, want)
	}
}

func TestStore_RootStartsEmpty(t *testing.T) {
	s := contextual.NewStore(nil)
	assertContext(t, s.Context(), value.EmptyStruct)
	if s.Parent() != nil {
		t.Error("root store should have no parent")
	}
}

func TestStore_MergePrecedence(t *testing.T) {
	parent := contextual.NewStore(nil)
	parent.SetContext(structOf("a", 1, "b", 2))

	child := parent.Child(structOf("b", 3))

	assertContext(t, child.Context(), structOf("a", 1, "b", 3))
	assertContext(t, parent.Context(), structOf("a", 1, "b", 2))
}

func TestStore_Tombstone(t *testing.T) {
	parent := contextual.NewStore(nil)
	parent.SetContext(structOf("a", 1, "b", 2))

	child := parent.Child(structOf("b", 3))
	child.RemoveContext("b")

	assertContext(t, child.Context(), structOf("a", 1))
	assertContext(t, parent.Context(), structOf("a", 1, "b", 2))
}

func TestStore_TombstoneSurvivesLaterUpdate(t *testing.T) {
	s := contextual.NewStore(nil)
	s.RemoveContext("x")
	s.UpdateContext("x", value.Number(1))

	if s.Context().Has("x") {
		t.Error("removed key should stay hidden after a later update")
	}
}

func TestStore_TombstoneDoesNotPropagateToChildren(t *testing.T) {
	parent := contextual.NewStore(nil)
	parent.SetContext(structOf("k", "parent"))
	parent.RemoveContext("k")

	child := parent.Child(structOf("k", "child"))

	assertContext(t, parent.Context(), value.EmptyStruct)
	assertContext(t, child.Context(), structOf("k", "child"))
}

func TestStore_RemoveContext_Deduplicates(t *testing.T) {
	s := contextual.NewStore(nil)
	s.RemoveContext("a")
	s.RemoveContext("b")
	s.RemoveContext("a")

	if got := s.Removed(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got removed %v, want [a b]", got)
	}
}

func TestStore_ClearKeepsTombstones(t *testing.T) {
	parent := contextual.NewStore(nil)
	parent.SetContext(structOf("a", 1, "b", 2))

	child := parent.Child(structOf("c", 3))
	child.RemoveContext("a")
	child.ClearContext()

	assertContext(t, child.Context(), structOf("b", 2))
}

func TestStore_SetContextReplacesWholesale(t *testing.T) {
	s := contextual.NewStore(nil)
	s.SetContext(structOf("a", 1, "b", 2))
	s.SetContext(structOf("c", 3))

	assertContext(t, s.Context(), structOf("c", 3))
}

func TestStore_UpdateContext(t *testing.T) {
	s := contextual.NewStore(nil)
	s.UpdateContext("a", value.String("x"))
	s.UpdateContext("a", value.String("y"))
	s.UpdateContext("b", value.Bool(true))

	assertContext(t, s.Context(), structOf("a", "y", "b", true))
}

func TestStore_UpdateContextNullShadowsParent(t *testing.T) {
	parent := contextual.NewStore(nil)
	parent.SetContext(structOf("a", 1, "b", 2))

	child := parent.Child(value.EmptyStruct)
	child.UpdateContext("a", value.Null)

	assertContext(t, child.Context(), structOf("b", 2))
}

func TestStore_ParentChangesVisibleOnRead(t *testing.T) {
	parent := contextual.NewStore(nil)
	child := parent.Child(structOf("own", 1))

	parent.UpdateContext("late", value.String("added"))

	assertContext(t, child.Context(), structOf("own", 1, "late", "added"))
}

func TestStore_SiblingsIndependent(t *testing.T) {
	parent := contextual.NewStore(nil)
	a := parent.Child(structOf("who", "a"))
	b := parent.Child(structOf("who", "b"))

	a.UpdateContext("extra", value.Bool(true))

	assertContext(t, b.Context(), structOf("who", "b"))
	assertContext(t, parent.Context(), value.EmptyStruct)
}

func TestStore_SetContextCopiesInput(t *testing.T) {
	s := contextual.NewStore(nil)
	input := structOf("a", 1)
	s.SetContext(input)
	s.UpdateContext("b", value.Number(2))

	if input.Has("b") {
		t.Error("mutation leaked into the struct passed to SetContext")
	}
}

func TestStore_DeepChain(t *testing.T) {
	root := contextual.NewStore(nil)
	root.SetContext(structOf("level", 0, "root", true))

	current := root
	for i := 1; i <= 5; i++ {
		current = current.Child(structOf("level", i))
	}

	assertContext(t, current.Context(), structOf("level", 5, "root", true))
}

func TestStore_ConcurrentReadWrite(t *testing.T) {
	parent := contextual.NewStore(nil)
	child := parent.Child(value.EmptyStruct)
	const n = 100

	var wg sync.WaitGroup
	wg.Add(3 * n)
	for i := range n {
		go func() {
			defer wg.Done()
			parent.UpdateContext("p", value.Number(float64(i)))
		}()
		go func() {
			defer wg.Done()
			child.UpdateContext("c", value.Number(float64(i)))
		}()
		go func() {
			defer wg.Done()
			_ = child.Context()
		}()
	}
	wg.Wait()

	ctx := child.Context()
	if !ctx.Has("p") || !ctx.Has("c") {
		t.Errorf("got context %s, want keys p and c", ctx)
	}
}

var _ contextual.Contextual = (*contextual.Store)(nil)
