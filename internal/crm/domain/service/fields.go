package service

import (
	"sort"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
)

// FieldPartition is the presentation split of one cached field set: leaf
// fields and the folder entries that group them.
type FieldPartition struct {
	CustomFields []*model.CustomField `json:"customFields"`
	Folders      []*model.CustomField `json:"folders"`
}

// PartitionFields splits a cached field set into leaf fields and folders,
// both ordered by position (remote ID breaks ties so the partition is
// deterministic regardless of fetch order).
func PartitionFields(fields []*model.CustomField) FieldPartition {
	partition := FieldPartition{
		CustomFields: make([]*model.CustomField, 0, len(fields)),
		Folders:      make([]*model.CustomField, 0),
	}

	for _, f := range fields {
		if f.IsFolder {
			partition.Folders = append(partition.Folders, f)
		} else {
			partition.CustomFields = append(partition.CustomFields, f)
		}
	}

	byPosition := func(s []*model.CustomField) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Position != s[j].Position {
				return s[i].Position < s[j].Position
			}
			return s[i].RemoteID < s[j].RemoteID
		}
	}
	sort.Slice(partition.CustomFields, byPosition(partition.CustomFields))
	sort.Slice(partition.Folders, byPosition(partition.Folders))

	return partition
}

// CacheUsable reports whether a cached field set can serve a read without a
// remote refresh: it must contain at least one leaf field, and folder
// resolution must either have happened already or never be needed (no field
// references a parent).
func CacheUsable(fields []*model.CustomField) bool {
	hasFields := false
	hasFolders := false
	hasParentRefs := false

	for _, f := range fields {
		if f.IsFolder {
			hasFolders = true
		} else {
			hasFields = true
		}
		if f.ParentID != "" {
			hasParentRefs = true
		}
	}

	return hasFields && (hasFolders || !hasParentRefs)
}

// DistinctParentIDs returns the unique non-empty parentId values of a remote
// field list, in first-seen order.
func DistinctParentIDs(fields []client.RemoteCustomField) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range fields {
		if f.ParentID == "" {
			continue
		}
		if _, ok := seen[f.ParentID]; ok {
			continue
		}
		seen[f.ParentID] = struct{}{}
		out = append(out, f.ParentID)
	}
	return out
}
