// Package notion fetches page trees from the notion web api and exposes
// the raw record map the blog normalizer walks.
package notion

import (
	"bytes"
	"encoding/json"

	errors "github.com/Laisky/errors/v2"
)

// Block types that hold a collection of pages.
const (
	BlockTypeCollectionViewPage = "collection_view_page"
	BlockTypeCollectionView     = "collection_view"
	BlockTypePage               = "page"
)

// IsCollectionType reports whether typ is a recognized collection container.
func IsCollectionType(typ string) bool {
	return typ == BlockTypeCollectionViewPage || typ == BlockTypeCollectionView
}

// RecordMap is the raw tree returned for a page, keyed by record id.
type RecordMap struct {
	Block          map[string]*BlockRecord          `json:"block,omitempty"`
	Collection     map[string]*CollectionRecord     `json:"collection,omitempty"`
	CollectionView map[string]*CollectionViewRecord `json:"collection_view,omitempty"`
	// CollectionQuery maps collection id -> view id -> query result.
	CollectionQuery map[string]map[string]*CollectionQueryResult `json:"collection_query,omitempty"`
}

// BlockRecord wraps a block value with the caller's role.
type BlockRecord struct {
	Role  string `json:"role,omitempty"`
	Value *Block `json:"value,omitempty"`
	// DecodeErr is set when the value could not be decoded, Value is nil then.
	DecodeErr error `json:"-"`
}

// UnmarshalJSON accepts both the flat and the doubly nested record shapes.
// A malformed value does not fail the whole record map, it is kept in DecodeErr.
func (r *BlockRecord) UnmarshalJSON(data []byte) error {
	role, value, err := unwrapRecord(data)
	if err != nil {
		r.DecodeErr = errors.Wrap(err, "unwrap block record")
		return nil
	}
	r.Role = role
	if len(value) == 0 {
		return nil
	}

	block := new(Block)
	if err = json.Unmarshal(value, block); err != nil {
		r.DecodeErr = errors.Wrap(err, "decode block")
		return nil
	}

	r.Value = block
	return nil
}

// Block is a single notion block.
type Block struct {
	ID           string                     `json:"id"`
	Type         string                     `json:"type"`
	ParentID     string                     `json:"parent_id,omitempty"`
	ParentTable  string                     `json:"parent_table,omitempty"`
	Alive        *bool                      `json:"alive,omitempty"`
	Properties   map[string]json.RawMessage `json:"properties,omitempty"`
	Content      []string                   `json:"content,omitempty"`
	Format       *BlockFormat               `json:"format,omitempty"`
	CollectionID string                     `json:"collection_id,omitempty"`
	ViewIDs      []string                   `json:"view_ids,omitempty"`
	// CreatedTime is a unix timestamp in milliseconds.
	CreatedTime int64 `json:"created_time"`
	// LastEditedTime is a unix timestamp in milliseconds.
	LastEditedTime int64 `json:"last_edited_time,omitempty"`
}

// BlockFormat holds the per-block layout flags.
type BlockFormat struct {
	PageFullWidth *bool  `json:"page_full_width,omitempty"`
	PageCover     string `json:"page_cover,omitempty"`
	PageIcon      string `json:"page_icon,omitempty"`
}

// FullWidth returns the page_full_width flag, false when unset.
func (b *Block) FullWidth() bool {
	if b == nil || b.Format == nil || b.Format.PageFullWidth == nil {
		return false
	}
	return *b.Format.PageFullWidth
}

// CollectionRecord wraps a collection value.
type CollectionRecord struct {
	Role  string      `json:"role,omitempty"`
	Value *Collection `json:"value,omitempty"`
}

// UnmarshalJSON accepts both the flat and the doubly nested record shapes.
func (r *CollectionRecord) UnmarshalJSON(data []byte) error {
	role, value, err := unwrapRecord(data)
	if err != nil {
		return errors.Wrap(err, "unwrap collection record")
	}
	r.Role = role
	if len(value) == 0 {
		return nil
	}

	r.Value = new(Collection)
	return errors.Wrap(json.Unmarshal(value, r.Value), "decode collection")
}

// Collection is a database whose rows are pages.
type Collection struct {
	ID       string                     `json:"id"`
	ParentID string                     `json:"parent_id,omitempty"`
	Schema   map[string]*PropertySchema `json:"schema,omitempty"`
}

// PropertySchema names and types one collection column.
type PropertySchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CollectionViewRecord wraps a collection view value.
type CollectionViewRecord struct {
	Role  string          `json:"role,omitempty"`
	Value *CollectionView `json:"value,omitempty"`
}

// UnmarshalJSON accepts both the flat and the doubly nested record shapes.
func (r *CollectionViewRecord) UnmarshalJSON(data []byte) error {
	role, value, err := unwrapRecord(data)
	if err != nil {
		return errors.Wrap(err, "unwrap collection view record")
	}
	r.Role = role
	if len(value) == 0 {
		return nil
	}

	r.Value = new(CollectionView)
	return errors.Wrap(json.Unmarshal(value, r.Value), "decode collection view")
}

// CollectionView is one view (table, gallery...) over a collection.
type CollectionView struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// CollectionQueryResult lists the page ids a view resolved to.
type CollectionQueryResult struct {
	BlockIDs               []string               `json:"blockIds,omitempty"`
	CollectionGroupResults *CollectionGroupResult `json:"collection_group_results,omitempty"`
}

// CollectionGroupResult is the reducer output of queryCollection.
type CollectionGroupResult struct {
	Type     string   `json:"type,omitempty"`
	BlockIDs []string `json:"blockIds,omitempty"`
	HasMore  bool     `json:"hasMore,omitempty"`
}

// PageIDs returns the page ids of the result, group results first.
func (r *CollectionQueryResult) PageIDs() []string {
	if r == nil {
		return nil
	}
	if r.CollectionGroupResults != nil && len(r.CollectionGroupResults.BlockIDs) > 0 {
		return r.CollectionGroupResults.BlockIDs
	}
	return r.BlockIDs
}

// BlockValue returns the block for id, or nil.
func (m *RecordMap) BlockValue(id string) *Block {
	if m == nil {
		return nil
	}
	if r, ok := m.Block[id]; ok && r != nil {
		return r.Value
	}
	return nil
}

// BlockDecodeErr returns the decode error of the block record id, if any.
func (m *RecordMap) BlockDecodeErr(id string) error {
	if m == nil {
		return nil
	}
	if r, ok := m.Block[id]; ok && r != nil {
		return r.DecodeErr
	}
	return nil
}

// CollectionValue returns the collection for id, or nil.
func (m *RecordMap) CollectionValue(id string) *Collection {
	if m == nil {
		return nil
	}
	if r, ok := m.Collection[id]; ok && r != nil {
		return r.Value
	}
	return nil
}

// Merge copies every record of other into m, other wins on conflicts.
func (m *RecordMap) Merge(other *RecordMap) {
	if other == nil {
		return
	}
	if m.Block == nil {
		m.Block = make(map[string]*BlockRecord)
	}
	for k, v := range other.Block {
		if v != nil && v.Value == nil && m.BlockValue(k) != nil {
			continue
		}
		m.Block[k] = v
	}
	if m.Collection == nil {
		m.Collection = make(map[string]*CollectionRecord)
	}
	for k, v := range other.Collection {
		m.Collection[k] = v
	}
	if m.CollectionView == nil {
		m.CollectionView = make(map[string]*CollectionViewRecord)
	}
	for k, v := range other.CollectionView {
		m.CollectionView[k] = v
	}
	for collID, views := range other.CollectionQuery {
		for viewID, res := range views {
			m.SetCollectionQuery(collID, viewID, res)
		}
	}
}

// SetCollectionQuery records the result of querying viewID of collID.
func (m *RecordMap) SetCollectionQuery(collID, viewID string, res *CollectionQueryResult) {
	if m.CollectionQuery == nil {
		m.CollectionQuery = make(map[string]map[string]*CollectionQueryResult)
	}
	if m.CollectionQuery[collID] == nil {
		m.CollectionQuery[collID] = make(map[string]*CollectionQueryResult)
	}
	m.CollectionQuery[collID][viewID] = res
}

// unwrapRecord returns role and the innermost value of a record, which
// newer api versions nest as {"value": {"value": {...}, "role": ...}}.
func unwrapRecord(data []byte) (role string, value json.RawMessage, err error) {
	var outer struct {
		Role  string          `json:"role"`
		Value json.RawMessage `json:"value"`
	}
	if err = json.Unmarshal(data, &outer); err != nil {
		return "", nil, errors.WithStack(err)
	}
	role, value = outer.Role, outer.Value
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return role, nil, nil
	}

	var inner struct {
		ID    string          `json:"id"`
		Role  string          `json:"role"`
		Value json.RawMessage `json:"value"`
	}
	if err = json.Unmarshal(value, &inner); err != nil {
		return "", nil, errors.WithStack(err)
	}
	if inner.ID == "" && len(inner.Value) > 0 && inner.Value[0] == '{' {
		if role == "" {
			role = inner.Role
		}
		value = inner.Value
	}

	return role, value, nil
}
