package traverse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func arcs(pairs ...[2]string) []Arc {
	out := make([]Arc, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Arc{From: p[0], To: p[1]})
	}
	return out
}

func TestReachableFrom(t *testing.T) {
	t.Parallel()

	order := []string{"a", "b", "c", "d", "e"}
	edges := arcs([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"d", "e"})

	t.Run("FollowsDirection", func(t *testing.T) {
		t.Parallel()
		got := ReachableFrom(order, edges, []string{"a"})
		require.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, got)
	})

	t.Run("MultipleSeeds", func(t *testing.T) {
		t.Parallel()
		got := ReachableFrom(order, edges, []string{"a", "d"})
		require.Len(t, got, 5)
	})

	t.Run("UnknownSeedIgnored", func(t *testing.T) {
		t.Parallel()
		got := ReachableFrom(order, edges, []string{"ghost"})
		require.Empty(t, got)
	})

	t.Run("NoSeeds", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, ReachableFrom(order, edges, nil))
	})
}

func TestReachableTo(t *testing.T) {
	t.Parallel()

	order := []string{"a", "b", "c", "d"}
	edges := arcs([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"d", "d"})

	got := ReachableTo(order, edges, []string{"c"})
	require.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, got)
	require.False(t, got["d"], "d has no path to c")
}

func TestArcsWithMissingEndpointsAreSkipped(t *testing.T) {
	t.Parallel()

	order := []string{"a", "b"}
	edges := arcs([2]string{"a", "gone"}, [2]string{"gone", "b"}, [2]string{"a", "b"})

	require.Equal(t, map[string]bool{"a": true, "b": true}, ReachableFrom(order, edges, []string{"a"}))
	require.Nil(t, CycleMembers(order, edges))
}

func TestCycleMembers(t *testing.T) {
	t.Parallel()

	t.Run("AcyclicIsNil", func(t *testing.T) {
		t.Parallel()
		order := []string{"a", "b", "c"}
		require.Nil(t, CycleMembers(order, arcs([2]string{"a", "b"}, [2]string{"b", "c"})))
	})

	t.Run("SimpleCycle", func(t *testing.T) {
		t.Parallel()
		order := []string{"s", "a", "b", "c", "e"}
		edges := arcs(
			[2]string{"s", "a"},
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"c", "a"},
			[2]string{"c", "e"},
		)
		require.Equal(t, []string{"a", "b", "c", "e"}, CycleMembers(order, edges),
			"e never drains because its only feed sits on the cycle")
	})

	t.Run("SelfLoop", func(t *testing.T) {
		t.Parallel()
		order := []string{"a", "b"}
		require.Equal(t, []string{"b"}, CycleMembers(order, arcs([2]string{"a", "b"}, [2]string{"b", "b"})))
	})

	t.Run("OrderFollowsInput", func(t *testing.T) {
		t.Parallel()
		order := []string{"z", "y", "x"}
		edges := arcs([2]string{"z", "y"}, [2]string{"y", "z"}, [2]string{"x", "z"})
		require.Equal(t, []string{"z", "y"}, CycleMembers(order, edges))
	})

	t.Run("EmptyGraph", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, CycleMembers(nil, nil))
	})
}

func TestParallelEdgesDrainCorrectly(t *testing.T) {
	t.Parallel()

	// Two arcs over the same pair must both count toward in-degree.
	order := []string{"a", "b"}
	edges := arcs([2]string{"a", "b"}, [2]string{"a", "b"})
	require.Nil(t, CycleMembers(order, edges))
	require.Equal(t, map[string]bool{"a": true, "b": true}, ReachableFrom(order, edges, []string{"a"}))
}
