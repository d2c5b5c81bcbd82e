package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PipelineStage is one ordered step of a pipeline. Stages are always replaced
// wholesale with the remote list on sync, never merged.
type PipelineStage struct {
	ID             string `json:"id" bson:"id"`
	Name           string `json:"name" bson:"name"`
	Position       int    `json:"position" bson:"position"`
	ShowInFunnel   bool   `json:"showInFunnel,omitempty" bson:"showInFunnel,omitempty"`
	ShowInPieChart bool   `json:"showInPieChart,omitempty" bson:"showInPieChart,omitempty"`
}

// Pipeline mirrors one remote pipeline. Unique per (remoteId, locationId).
type Pipeline struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RemoteID   string             `json:"id" bson:"remoteId"`
	LocationID string             `json:"locationId" bson:"locationId"`
	Name       string             `json:"name" bson:"name"`
	Stages     []PipelineStage    `json:"stages" bson:"stages"`
	SyncedAt   time.Time          `json:"syncedAt" bson:"syncedAt"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
