// internal/presence/labels.go
//
// Player identity resolver: maps a channel's member-id set to stable
// ordinal labels ("Player 1", "Player 2", ...). Labels are derived from a
// lexicographic sort of the member ids, never from join order — join order
// is racy between clients and yields inconsistent per-client views. The
// mapping is recomputed from the full current set on every membership
// change, not patched incrementally.

package presence

import (
	"fmt"
	"sort"
)

// ResolveLabels assigns "Player N" labels by ascending lexicographic order
// of member ids. Deterministic and order-independent: the same set always
// yields the same mapping. Duplicate ids are collapsed.
func ResolveLabels(memberIDs []string) map[string]string {
	uniq := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		uniq[id] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for id := range uniq {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	labels := make(map[string]string, len(sorted))
	for i, id := range sorted {
		labels[id] = fmt.Sprintf("Player %d", i+1)
	}
	return labels
}

// PairLabels is the two-party fallback used before a full membership
// snapshot is available: the same rule applied to {self, other}. Converges
// to ResolveLabels once the snapshot arrives, since both sort the same set.
func PairLabels(selfID, otherID string) map[string]string {
	return ResolveLabels([]string{selfID, otherID})
}
