package camguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(v int64) *int64 { return &v }

func vtx(vertexID int64) *Vertex { return &Vertex{ID: vertexID} }

func TestDeriveEdgesEntryPoint(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1)}
	pairs, err := DeriveEdges([]VertexInput{{UniqueID: "a"}}, byUID)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Nil(t, pairs[0].SourceID)
	assert.Equal(t, int64(1), *pairs[0].DestinationID)
}

func TestDeriveEdgesSourcesAndDestinations(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1), "b": vtx(2), "c": vtx(3)}
	inputs := []VertexInput{
		{UniqueID: "a"},
		{UniqueID: "b", Source: []string{"a"}},
		{UniqueID: "c", Source: []string{"a", "b"}},
	}
	pairs, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)
	want := []EdgePair{
		{SourceID: nil, DestinationID: id(1)},
		{SourceID: id(1), DestinationID: id(2)},
		{SourceID: id(1), DestinationID: id(3)},
		{SourceID: id(2), DestinationID: id(3)},
	}
	assert.Equal(t, want, pairs)
}

func TestDeriveEdgesDestinationRefs(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1), "b": vtx(2)}
	inputs := []VertexInput{
		{UniqueID: "a", Destination: []string{"b"}},
		{UniqueID: "b", Source: []string{"a"}},
	}
	pairs, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)
	// a's destination ref and b's source ref describe the same edge; the
	// duplicate is dropped and a's entry-point pair survives.
	want := []EdgePair{
		{SourceID: nil, DestinationID: id(1)},
		{SourceID: id(1), DestinationID: id(2)},
	}
	assert.Equal(t, want, pairs)
}

func TestDeriveEdgesEmptyStringSourceRef(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1), "b": vtx(2)}
	inputs := []VertexInput{
		{UniqueID: "a"},
		// An explicit empty ref makes b an entry point while keeping its
		// other wiring.
		{UniqueID: "b", Source: []string{"", "a"}},
	}
	pairs, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)
	want := []EdgePair{
		{SourceID: nil, DestinationID: id(1)},
		{SourceID: nil, DestinationID: id(2)},
		{SourceID: id(1), DestinationID: id(2)},
	}
	assert.Equal(t, want, pairs)
}

func TestDeriveEdgesEmptyDestinationRefSkipped(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1)}
	pairs, err := DeriveEdges([]VertexInput{{UniqueID: "a", Destination: []string{""}}}, byUID)
	require.NoError(t, err)
	assert.Equal(t, []EdgePair{{SourceID: nil, DestinationID: id(1)}}, pairs)
}

func TestDeriveEdgesUnknownRefs(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1)}

	_, err := DeriveEdges([]VertexInput{{UniqueID: "a", Source: []string{"ghost"}}}, byUID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, verr.Index)
	assert.Equal(t, "source", verr.Field)

	_, err = DeriveEdges([]VertexInput{{UniqueID: "a"}, {UniqueID: "missing"}}, byUID)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "unique_id", verr.Field)
}

func TestDeriveEdgesSymmetricDedup(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1), "b": vtx(2)}
	inputs := []VertexInput{
		{UniqueID: "a", Source: []string{"b"}},
		{UniqueID: "b", Source: []string{"a"}},
	}
	pairs, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)
	// b→a and a→b collapse by unordered pair; the first emitted wins.
	assert.Equal(t, []EdgePair{{SourceID: id(2), DestinationID: id(1)}}, pairs)
}

func TestMatchEdgesExact(t *testing.T) {
	existing := []*Edge{
		{ID: 10, SourceID: nil, DestinationID: id(1)},
		{ID: 11, SourceID: id(1), DestinationID: id(2)},
	}
	pairs := []EdgePair{
		{SourceID: nil, DestinationID: id(1)},
		{SourceID: id(1), DestinationID: id(2)},
		{SourceID: id(2), DestinationID: id(3)},
	}
	kept, removed := MatchEdges(pairs, existing)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(10), kept[0].ID)
	assert.Equal(t, int64(11), kept[1].ID)
	assert.Empty(t, removed)
}

func TestMatchEdgesDirectionFlip(t *testing.T) {
	existing := []*Edge{{ID: 10, SourceID: id(1), DestinationID: id(2)}}
	pairs := []EdgePair{{SourceID: id(2), DestinationID: id(1)}}
	kept, removed := MatchEdges(pairs, existing)
	// Matching during update is direction-exact: the flipped edge is removed
	// and the pair left for insertion.
	assert.Empty(t, kept)
	require.Len(t, removed, 1)
	assert.Equal(t, int64(10), removed[0].ID)
}

func TestMatchEdgesConsumesPairOnce(t *testing.T) {
	existing := []*Edge{
		{ID: 10, SourceID: id(1), DestinationID: id(2)},
		{ID: 11, SourceID: id(1), DestinationID: id(2)},
	}
	pairs := []EdgePair{{SourceID: id(1), DestinationID: id(2)}}
	kept, removed := MatchEdges(pairs, existing)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(10), kept[0].ID)
	require.Len(t, removed, 1)
	assert.Equal(t, int64(11), removed[0].ID)
}

func TestMatchEdgesRemovesUnreferenced(t *testing.T) {
	existing := []*Edge{
		{ID: 10, SourceID: nil, DestinationID: id(1)},
		{ID: 11, SourceID: id(1), DestinationID: id(2)},
	}
	kept, removed := MatchEdges(nil, existing)
	assert.Empty(t, kept)
	assert.Len(t, removed, 2)
}

// Resubmitting the derivation output unchanged must keep every stored edge.
func TestDeriveThenMatchIsStable(t *testing.T) {
	byUID := map[string]*Vertex{"a": vtx(1), "b": vtx(2), "c": vtx(3)}
	inputs := []VertexInput{
		{UniqueID: "a"},
		{UniqueID: "b", Source: []string{"a"}},
		{UniqueID: "c", Source: []string{"a", "b"}},
	}
	pairs, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)

	stored := make([]*Edge, len(pairs))
	for i, p := range pairs {
		stored[i] = &Edge{ID: int64(100 + i), SourceID: p.SourceID, DestinationID: p.DestinationID}
	}

	again, err := DeriveEdges(inputs, byUID)
	require.NoError(t, err)
	kept, removed := MatchEdges(again, stored)
	assert.Empty(t, removed)
	require.Len(t, kept, len(pairs))
	for i := range pairs {
		assert.Equal(t, stored[i].ID, kept[i].ID)
	}
}
