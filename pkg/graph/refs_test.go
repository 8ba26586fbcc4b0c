package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

//------------------------------//
// Tests for reference keys     //
//------------------------------//

func TestReferenceKeySequencePerType(t *testing.T) {
	t.Parallel()
	g := New()

	var keys []string
	for _, typ := range []NodeType{TypeStart, TypeLLM, TypeLLM, TypeAgent, TypeLLM, TypeEnd} {
		n, err := g.AddNode(typ, Position{}, nil)
		require.NoError(t, err)
		keys = append(keys, n.ReferenceKey())
	}

	require.Equal(t, []string{"start_1", "llm_1", "llm_2", "agent_1", "llm_3", "end_1"}, keys)
}

func TestReferenceKeyIsNeverReassigned(t *testing.T) {
	t.Parallel()
	g := New()

	first, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	second, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	require.Equal(t, "llm_1", first.ReferenceKey())
	require.Equal(t, "llm_2", second.ReferenceKey())

	// Removing llm_1 must not renumber llm_2: templates already
	// reference it by key.
	require.NoError(t, g.RemoveNode(first.ID))
	require.Equal(t, "llm_2", second.ReferenceKey())

	// A later node fills in around the hole without stealing llm_2.
	third, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	require.NotEqual(t, second.ReferenceKey(), third.ReferenceKey())

	// Assigning again is a no-op on a keyed node.
	require.Equal(t, "llm_2", AssignReferenceKey(second, g))
}

func TestReferenceKeyCollisionIncrements(t *testing.T) {
	t.Parallel()
	g := New()

	a, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	b, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	require.Equal(t, "llm_1", a.ReferenceKey())
	require.Equal(t, "llm_2", b.ReferenceKey())

	// A manual rename creates a key the counter would otherwise produce.
	require.NoError(t, g.UpdateNodeData(b.ID, map[string]any{"reference_key": "llm_3"}))

	c, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	require.Equal(t, "llm_4", c.ReferenceKey(), "llm_3 is taken, counter must skip it")
}

func TestReferenceKeysAreDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []string {
		g := New()
		var keys []string
		for _, typ := range []NodeType{TypeStart, TypeClassifier, TypeLLM, TypeLLM, TypeTool, TypeEnd} {
			n, err := g.AddNode(typ, Position{}, nil)
			require.NoError(t, err)
			keys = append(keys, n.ReferenceKey())
		}
		return keys
	}

	require.Equal(t, build(), build(), "same edit sequence must yield the same keys")
}

func TestEnsureReferenceKeys(t *testing.T) {
	t.Parallel()

	// Hand-written documents usually omit keys.
	raw := []byte(`{
		"nodes": [
			{"id": "n1", "type": "start", "position": {"x": 0, "y": 0}, "data": {"label": "Start", "input_variables": []}},
			{"id": "n2", "type": "llm", "position": {"x": 200, "y": 0}, "data": {"label": "Answer", "user_prompt": "hi"}},
			{"id": "n3", "type": "llm", "position": {"x": 400, "y": 0}, "data": {"label": "Keyed", "reference_key": "llm_1"}}
		],
		"edges": []
	}`)
	g, err := UnmarshalDocument(raw)
	require.NoError(t, err)

	EnsureReferenceKeys(g)

	require.Equal(t, "start_1", g.Node("n1").ReferenceKey())
	require.Equal(t, "llm_2", g.Node("n2").ReferenceKey(), "llm_1 is taken by the keyed node")
	require.Equal(t, "llm_1", g.Node("n3").ReferenceKey(), "existing keys are kept")
}

func TestNodeByReferenceKey(t *testing.T) {
	t.Parallel()
	g := New()
	n, err := g.AddNode(TypeAgent, Position{}, nil)
	require.NoError(t, err)

	require.Same(t, n, g.NodeByReferenceKey("agent_1"))
	require.Nil(t, g.NodeByReferenceKey("agent_9"))
	require.Nil(t, g.NodeByReferenceKey(""))
}

//------------------------------//
// Tests for the variable view  //
//------------------------------//

func TestVariables(t *testing.T) {
	t.Parallel()
	g := New()

	start, err := g.AddNode(TypeStart, Position{}, &StartData{
		BaseData: BaseData{Label: "Start"},
		InputVariables: []InputVariable{
			{Name: "message", Type: "string", Description: "User message"},
			{Name: "locale", Type: "string"},
		},
	})
	require.NoError(t, err)
	llm, err := g.AddNode(TypeLLM, Position{}, nil)
	require.NoError(t, err)
	_, err = g.AddNode(TypeCondition, Position{}, nil)
	require.NoError(t, err)
	api, err := g.AddNode(TypeAPI, Position{}, nil)
	require.NoError(t, err)
	_, err = g.AddNode(TypeEnd, Position{}, nil)
	require.NoError(t, err)

	vars := Variables(g)
	require.Len(t, vars, 3, "condition and end expose nothing")

	require.Equal(t, start.ID, vars[0].NodeID)
	require.Equal(t, "start_1", vars[0].ReferenceKey)
	require.Equal(t, []Variable{
		{Name: "message", Type: "string", Description: "User message"},
		{Name: "locale", Type: "string"},
	}, vars[0].Outputs)

	require.Equal(t, llm.ID, vars[1].NodeID)
	require.Equal(t, []Variable{{Name: "text", Type: "string", Description: "LLM output text"}}, vars[1].Outputs)

	require.Equal(t, api.ID, vars[2].NodeID)
	names := make([]string, 0, len(vars[2].Outputs))
	for _, v := range vars[2].Outputs {
		names = append(names, v.Name)
	}
	require.Equal(t, []string{"body", "status_code", "headers"}, names)
}

func TestVariablesEmptyStart(t *testing.T) {
	t.Parallel()
	g := New()
	_, err := g.AddNode(TypeStart, Position{}, nil)
	require.NoError(t, err)

	require.Empty(t, Variables(g), "a start with no input variables exposes nothing")
}
