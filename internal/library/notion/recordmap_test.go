package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRecordMapUnwrap verifies both the flat and the nested record shapes decode.
func TestRecordMapUnwrap(t *testing.T) {
	raw := `{
		"block": {
			"flat": {"role": "reader", "value": {"id": "flat", "type": "page", "created_time": 1700000000000}},
			"nested": {"value": {"role": "editor", "value": {"id": "nested", "type": "collection_view_page",
				"collection_id": "c1", "view_ids": ["v1"], "format": {"page_full_width": true}}}},
			"empty": {"role": "none"}
		},
		"collection": {
			"c1": {"value": {"value": {"id": "c1", "schema": {"title": {"name": "title", "type": "title"}}}}}
		}
	}`

	tree := new(RecordMap)
	require.NoError(t, json.Unmarshal([]byte(raw), tree))

	flat := tree.BlockValue("flat")
	require.NotNil(t, flat)
	require.Equal(t, "page", flat.Type)
	require.Equal(t, int64(1700000000000), flat.CreatedTime)
	require.False(t, flat.FullWidth())
	require.Equal(t, "reader", tree.Block["flat"].Role)

	nested := tree.BlockValue("nested")
	require.NotNil(t, nested)
	require.Equal(t, "c1", nested.CollectionID)
	require.True(t, nested.FullWidth())
	require.Equal(t, "editor", tree.Block["nested"].Role)

	require.Nil(t, tree.BlockValue("empty"))
	require.Nil(t, tree.BlockValue("missing"))

	coll := tree.CollectionValue("c1")
	require.NotNil(t, coll)
	require.Equal(t, "title", coll.Schema["title"].Type)
}

func TestRecordMapMalformedBlock(t *testing.T) {
	raw := `{
		"block": {
			"good": {"value": {"id": "good", "type": "page", "created_time": 1700000000000}},
			"bad": {"value": {"id": "bad", "type": "page", "created_time": "not-a-number"}},
			"junk": "not an object"
		}
	}`

	tree := new(RecordMap)
	require.NoError(t, json.Unmarshal([]byte(raw), tree))

	require.NotNil(t, tree.BlockValue("good"))
	require.NoError(t, tree.BlockDecodeErr("good"))
	require.Nil(t, tree.BlockValue("bad"))
	require.ErrorContains(t, tree.BlockDecodeErr("bad"), "decode block")
	require.Nil(t, tree.BlockValue("junk"))
	require.Error(t, tree.BlockDecodeErr("junk"))
	require.NoError(t, tree.BlockDecodeErr("missing"))

	// a failed record does not replace a decoded one
	other := &RecordMap{Block: map[string]*BlockRecord{"good": tree.Block["bad"]}}
	tree.Merge(other)
	require.NotNil(t, tree.BlockValue("good"))
}

func TestRecordMapMerge(t *testing.T) {
	a := &RecordMap{Block: map[string]*BlockRecord{
		"x": {Value: &Block{ID: "x", Type: "page"}},
	}}
	b := &RecordMap{
		Block: map[string]*BlockRecord{
			"x": {Value: &Block{ID: "x", Type: "text"}},
			"y": {Value: &Block{ID: "y"}},
		},
		CollectionQuery: map[string]map[string]*CollectionQueryResult{
			"c": {"v": {BlockIDs: []string{"y"}}},
		},
	}

	a.Merge(b)
	a.Merge(nil)
	require.Equal(t, "text", a.BlockValue("x").Type)
	require.NotNil(t, a.BlockValue("y"))
	require.Equal(t, []string{"y"}, a.CollectionQuery["c"]["v"].PageIDs())
}

func TestCollectionPageIDs(t *testing.T) {
	tree := &RecordMap{
		Block: map[string]*BlockRecord{
			"root": {Value: &Block{ID: "root", Type: BlockTypeCollectionView,
				CollectionID: "c", ViewIDs: []string{"v2", "v1"}}},
		},
	}
	tree.SetCollectionQuery("c", "v1", &CollectionQueryResult{BlockIDs: []string{"a", "b", "c"}})
	tree.SetCollectionQuery("c", "v2", &CollectionQueryResult{
		CollectionGroupResults: &CollectionGroupResult{BlockIDs: []string{"c", "d"}},
	})
	tree.SetCollectionQuery("c", "v0", &CollectionQueryResult{BlockIDs: []string{"e", "a"}})

	require.Equal(t, []string{"c", "d", "a", "b", "e"}, CollectionPageIDs(tree, "root"))
	require.Nil(t, CollectionPageIDs(tree, "missing"))
}

func TestRootCollection(t *testing.T) {
	tree := &RecordMap{
		Block: map[string]*BlockRecord{
			"root": {Value: &Block{ID: "root", CollectionID: "c2"}},
			"bare": {Value: &Block{ID: "bare"}},
		},
		Collection: map[string]*CollectionRecord{
			"c1": {Value: &Collection{ID: "c1"}},
			"c2": {Value: &Collection{ID: "c2"}},
		},
	}

	require.Equal(t, "c2", RootCollection(tree, "root").ID)
	require.Equal(t, "c1", RootCollection(tree, "bare").ID)
	require.Nil(t, RootCollection(new(RecordMap), "root"))
}
