package notion

// CollectionPageIDs enumerates the page ids of the collection under the
// root block, visiting its views in view_ids order and keeping the first
// occurrence of every id.
func CollectionPageIDs(tree *RecordMap, rootID string) []string {
	root := tree.BlockValue(rootID)
	if root == nil {
		return nil
	}

	views := tree.CollectionQuery[root.CollectionID]
	if len(views) == 0 {
		return nil
	}

	var (
		seen = make(map[string]struct{})
		ids  []string
	)
	visit := func(res *CollectionQueryResult) {
		for _, id := range res.PageIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, viewID := range root.ViewIDs {
		if res, ok := views[viewID]; ok {
			visit(res)
		}
	}
	// views queried but not listed on the root block come last
	for _, viewID := range sortedKeys(views) {
		visit(views[viewID])
	}

	return ids
}

// RootCollection returns the schema-bearing collection of the root block,
// falling back to any collection present when the block has no id.
func RootCollection(tree *RecordMap, rootID string) *Collection {
	if root := tree.BlockValue(rootID); root != nil && root.CollectionID != "" {
		if c := tree.CollectionValue(root.CollectionID); c != nil {
			return c
		}
	}
	for _, id := range sortedKeys(tree.Collection) {
		if c := tree.CollectionValue(id); c != nil {
			return c
		}
	}

	return nil
}
