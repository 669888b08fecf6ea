package resolve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TieBreak(t *testing.T) {
	result := Resolve([]Candidate[string]{
		{Key: "p", Package: "C", Priority: 3, Value: "c"},
		{Key: "p", Package: "B", Priority: 5, Value: "b"},
		{Key: "p", Package: "A", Priority: 5, Value: "a"},
	})

	assert.Equal(t, "A", result.Winners["p"].Package)
	assert.Equal(t, "a", result.Winners["p"].Value)
	require.Len(t, result.Conflicts, 2)
	assert.Equal(t, Conflict{Key: "p", Winner: "A", Losers: []string{"B"}, Status: StatusUnresolved}, result.Conflicts[0])
	assert.Equal(t, Conflict{Key: "p", Winner: "A", Losers: []string{"C"}, Status: StatusResolved}, result.Conflicts[1])

	resolved, unresolved := Partition(result.Conflicts)
	assert.Len(t, resolved, 1)
	assert.Len(t, unresolved, 1)
}

func TestResolve_SingleContributor(t *testing.T) {
	result := Resolve([]Candidate[int]{
		{Key: "a", Package: "X", Priority: 0, Value: 1},
		{Key: "b", Package: "Y", Priority: -4, Value: 2},
	})
	assert.Len(t, result.Winners, 2)
	assert.Empty(t, result.Conflicts)
}

func TestResolve_SamePackageNeverConflicts(t *testing.T) {
	result := Resolve([]Candidate[int]{
		{Key: "a", Package: "X", Value: 1},
		{Key: "a", Package: "X", Value: 2},
	})
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 2, result.Winners["a"].Value)
}

func TestResolve_Deterministic(t *testing.T) {
	var candidates []Candidate[string]
	for _, key := range []string{"x", "y", "z"} {
		for i, pkg := range []string{"d", "a", "c", "b"} {
			candidates = append(candidates, Candidate[string]{Key: key, Package: pkg, Priority: i % 2, Value: key + pkg})
		}
	}
	want := Resolve(candidates)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Candidate[string](nil), candidates...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Resolve(shuffled))
	}
}
