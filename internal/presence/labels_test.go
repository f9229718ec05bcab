package presence

import (
	"reflect"
	"testing"
)

func TestResolveLabelsOrderIndependent(t *testing.T) {
	want := map[string]string{"a": "Player 1", "b": "Player 2"}

	got1 := ResolveLabels([]string{"b", "a"})
	got2 := ResolveLabels([]string{"a", "b"})

	if !reflect.DeepEqual(got1, want) {
		t.Fatalf("ResolveLabels({b,a}) = %v, want %v", got1, want)
	}
	if !reflect.DeepEqual(got1, got2) {
		t.Fatalf("label maps differ by input order: %v vs %v", got1, got2)
	}
}

func TestResolveLabelsCollapsesDuplicates(t *testing.T) {
	got := ResolveLabels([]string{"x", "x", "y"})
	want := map[string]string{"x": "Player 1", "y": "Player 2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPairLabelsConvergesToFullSet(t *testing.T) {
	// The two-party fallback must match the full-set computation once a
	// membership snapshot arrives.
	fallback := PairLabels("p2", "p1")
	full := ResolveLabels([]string{"p1", "p2"})
	if !reflect.DeepEqual(fallback, full) {
		t.Fatalf("fallback %v diverges from full-set %v", fallback, full)
	}
}

func TestLabelsTrackMembershipChanges(t *testing.T) {
	// {} -> {p1} -> {p1,p2} -> {p1}: labels reassigned by lexicographic
	// order at every step, never by join sequence.
	steps := []struct {
		members []string
		want    map[string]string
	}{
		{nil, map[string]string{}},
		{[]string{"p1"}, map[string]string{"p1": "Player 1"}},
		{[]string{"p2", "p1"}, map[string]string{"p1": "Player 1", "p2": "Player 2"}},
		{[]string{"p1"}, map[string]string{"p1": "Player 1"}},
	}
	for i, s := range steps {
		if got := ResolveLabels(s.members); !reflect.DeepEqual(got, s.want) {
			t.Fatalf("step %d: got %v, want %v", i, got, s.want)
		}
	}
}
