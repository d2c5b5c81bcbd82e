package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldModel says which entity type a custom field attaches to.
type FieldModel string

const (
	FieldModelOpportunity FieldModel = "opportunity"
	FieldModelContact     FieldModel = "contact"
)

// CustomField is a cached remote custom-field definition (not a value).
// Folders and leaf fields share this collection, disambiguated by IsFolder.
// Unique per (remoteId, locationId); periodically refreshed and pruned of
// entries no longer present remotely.
type CustomField struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RemoteID   string             `json:"id" bson:"remoteId"`
	LocationID string             `json:"locationId" bson:"locationId"`

	Name        string `json:"name" bson:"name"`
	FieldKey    string `json:"fieldKey" bson:"fieldKey"`
	DataType    string `json:"dataType" bson:"dataType"`
	Placeholder string `json:"placeholder" bson:"placeholder"`
	Position    int    `json:"position" bson:"position"`

	PicklistOptions      []string      `json:"picklistOptions" bson:"picklistOptions"`
	PicklistImageOptions []interface{} `json:"picklistImageOptions" bson:"picklistImageOptions"`
	AllowCustomOption    bool          `json:"allowCustomOption" bson:"allowCustomOption"`
	IsMultiFileAllowed   bool          `json:"isMultiFileAllowed" bson:"isMultiFileAllowed"`
	MaxFileLimit         int           `json:"maxFileLimit" bson:"maxFileLimit"`
	IsRequired           bool          `json:"isRequired" bson:"isRequired"`

	FieldModel FieldModel `json:"model" bson:"fieldModel"`

	// Folder grouping. ParentID is empty for top-level fields; ParentName is
	// denormalized from the resolved folder for convenience.
	ParentID   string `json:"parentId" bson:"parentId"`
	ParentName string `json:"parentName" bson:"parentName"`
	IsFolder   bool   `json:"isFolder" bson:"isFolder"`
	Standard   bool   `json:"standard,omitempty" bson:"standard,omitempty"`

	SyncedAt  time.Time `json:"syncedAt" bson:"syncedAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FolderDataType marks folder entries in the shared collection.
const FolderDataType = "FOLDER"
