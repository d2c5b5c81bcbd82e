package usecase

import (
	"context"
	"sync"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/service"
)

// GetCustomFields serves the field schema of one field model through the
// local cache. The cache answers when it holds at least one leaf field and
// folder resolution is complete (or never needed); otherwise, and on forced
// refresh, the schema is re-fetched from the remote, folders are resolved,
// the cache is rewritten and stale entries are swept.
func (e *Engine) GetCustomFields(ctx context.Context, locationID string, fieldModel model.FieldModel, forceRefresh bool) (*service.FieldPartition, error) {
	if !forceRefresh {
		cached, err := e.customFields.ListByModel(ctx, locationID, fieldModel)
		if err != nil {
			return nil, err
		}
		if service.CacheUsable(cached) {
			partition := service.PartitionFields(cached)
			return &partition, nil
		}
	}

	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	fetched, err := remote.GetCustomFields(ctx, string(fieldModel))
	if err != nil {
		return nil, classifyRemoteError(err, "fetch custom fields")
	}

	folders := e.resolveFolders(ctx, remote, service.DistinctParentIDs(fetched))

	records := make([]*model.CustomField, 0, len(fetched)+len(folders))
	keep := make([]string, 0, len(fetched)+len(folders))
	for _, raw := range fetched {
		field := fieldFromRemote(raw, locationID, fieldModel)
		if folder, ok := folders[raw.ParentID]; ok {
			field.ParentName = folder.Name
		}
		records = append(records, field)
		keep = append(keep, raw.ID)
	}
	for _, folder := range folders {
		records = append(records, folderFromRemote(folder, locationID, fieldModel))
		keep = append(keep, folder.ID)
	}

	if err := e.customFields.BulkUpsert(ctx, records); err != nil {
		return nil, err
	}
	if _, err := e.customFields.DeleteMissing(ctx, locationID, fieldModel, keep); err != nil {
		return nil, err
	}

	stored, err := e.customFields.ListByModel(ctx, locationID, fieldModel)
	if err != nil {
		return nil, err
	}
	partition := service.PartitionFields(stored)
	return &partition, nil
}

// resolveFolders fetches each distinct parent ID concurrently and keeps the
// ones that really are folders. A parent that fails to resolve is logged and
// left out; its fields surface at top level.
func (e *Engine) resolveFolders(ctx context.Context, remote client.CRMClient, parentIDs []string) map[string]client.RemoteCustomField {
	folders := make(map[string]client.RemoteCustomField, len(parentIDs))
	if len(parentIDs) == 0 {
		return folders
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, parentID := range parentIDs {
		wg.Add(1)
		go func(parentID string) {
			defer wg.Done()
			folder, err := remote.GetCustomField(ctx, parentID)
			if err != nil {
				e.logger.WithFields(map[string]interface{}{
					"parent_id": parentID,
					"error":     err.Error(),
				}).Warn("could not resolve custom field folder")
				return
			}
			if !folder.IsFolder() {
				return
			}
			mu.Lock()
			folders[parentID] = *folder
			mu.Unlock()
		}(parentID)
	}
	wg.Wait()
	return folders
}

func fieldFromRemote(raw client.RemoteCustomField, locationID string, fieldModel model.FieldModel) *model.CustomField {
	return &model.CustomField{
		RemoteID:             raw.ID,
		LocationID:           locationID,
		Name:                 raw.Name,
		FieldKey:             raw.FieldKey,
		DataType:             raw.DataType,
		Placeholder:          raw.Placeholder,
		Position:             raw.Position,
		PicklistOptions:      raw.PicklistOptions,
		PicklistImageOptions: raw.PicklistImageOptions,
		AllowCustomOption:    raw.AllowCustomOption,
		IsMultiFileAllowed:   raw.IsMultiFileAllowed,
		MaxFileLimit:         raw.MaxFileLimit,
		IsRequired:           raw.IsRequired,
		FieldModel:           fieldModel,
		ParentID:             raw.ParentID,
		IsFolder:             false,
		Standard:             raw.Standard,
	}
}

func folderFromRemote(raw client.RemoteCustomField, locationID string, fieldModel model.FieldModel) *model.CustomField {
	return &model.CustomField{
		RemoteID:   raw.ID,
		LocationID: locationID,
		Name:       raw.Name,
		DataType:   model.FolderDataType,
		Position:   raw.Position,
		FieldModel: fieldModel,
		IsFolder:   true,
		Standard:   raw.Standard,
	}
}
