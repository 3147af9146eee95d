package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/figvars/pkg/core"
)

func viewSnapshot(version uint64) *core.Snapshot {
	main := []core.Variable{
		alias("A", "a", "B"),
		alias("B", "b", "C"),
		literal("C", "c", core.NumberValue(1)),
		literal("D", "d", core.NumberValue(9)),
	}
	for i := range main {
		main[i].FileID = "main"
	}
	return &core.Snapshot{
		Version:   version,
		Files:     []core.FileInfo{{ID: "main", Name: "Main", Source: core.SourceMain}},
		ByFile:    map[string][]core.Variable{"main": main},
		Variables: main,
	}
}

func TestView_Memoizes(t *testing.T) {
	v := NewView(viewSnapshot(1))

	first := v.Resolve("main", "A", "m1")
	require.True(t, first.Success)
	assert.Equal(t, 1, v.Cached())

	second := v.Resolve("main", "A", "m1")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, v.Cached())

	nodes, edges := v.Stats()
	assert.Equal(t, 4, nodes)
	assert.Equal(t, 2, edges)
}

func TestView_SyncOnVersion(t *testing.T) {
	v := NewView(viewSnapshot(1))
	v.Resolve("main", "A", "m1")

	assert.False(t, v.Sync(viewSnapshot(1)))
	assert.Equal(t, 1, v.Cached())

	assert.True(t, v.Sync(viewSnapshot(2)))
	assert.Equal(t, 0, v.Cached())
	assert.Equal(t, uint64(2), v.Version())
}

func TestView_ApplyInvalidatesDependents(t *testing.T) {
	v := NewView(viewSnapshot(1))
	v.Resolve("main", "A", "m1")
	v.Resolve("main", "D", "m1")
	require.Equal(t, 2, v.Cached())

	edited := literal("C", "c", core.NumberValue(42))
	edited.FileID = "main"
	affected := v.Apply(edited)

	assert.ElementsMatch(t, []string{NodeKey("main", "A"), NodeKey("main", "B"), NodeKey("main", "C")}, affected)
	assert.Equal(t, 1, v.Cached(), "unrelated D stays cached")

	res := v.Resolve("main", "A", "m1")
	require.True(t, res.Success)
	assert.Equal(t, 42.0, res.FinalVariable.Value.Number)
}

func TestView_ApplyRetarget(t *testing.T) {
	v := NewView(viewSnapshot(1))
	v.Resolve("main", "A", "m1")

	retarget := alias("A", "a", "D")
	retarget.FileID = "main"
	v.Apply(retarget)

	res := v.Resolve("main", "A", "m1")
	require.True(t, res.Success)
	assert.Equal(t, "D", res.FinalVariable.ID)
	assert.Equal(t, []string{NodeKey("main", "D")}, v.Dependencies("main", "A"))
}

func TestView_Cycles(t *testing.T) {
	v := NewView(viewSnapshot(1))
	assert.Empty(t, v.Cycles())

	loop := alias("C", "c", "A")
	loop.FileID = "main"
	v.Apply(loop)

	cycles := v.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{NodeKey("main", "A"), NodeKey("main", "B"), NodeKey("main", "C"), NodeKey("main", "A")}, cycles[0])

	res := v.Resolve("main", "A", "m1")
	assert.False(t, res.Success)
}

func TestView_Dependents(t *testing.T) {
	v := NewView(viewSnapshot(1))
	assert.Equal(t, []string{NodeKey("main", "A"), NodeKey("main", "B")}, v.Dependents("main", "C"))
	assert.Empty(t, v.Dependents("main", "A"))
}
