package model

// FieldValue is the canonical representation of one custom-field value attached
// to an opportunity. This is the only shape ever written to the local store and
// the only shape the UI can render.
type FieldValue struct {
	ID    string      `json:"id" bson:"id"`
	Key   string      `json:"key" bson:"key"`
	Value interface{} `json:"field_value" bson:"field_value"`
}

// RawFieldValue captures the shapes the remote API uses for custom-field
// values. Search and get endpoints echo values as
// {id, fieldValueString, fieldValueArray, type}; the write path uses
// {id, key, field_value}. Both decode into this struct.
type RawFieldValue struct {
	ID         string      `json:"id"`
	Key        string      `json:"key"`
	FieldKey   string      `json:"fieldKey"`
	Value      interface{} `json:"field_value"`
	ValueArray interface{} `json:"fieldValueArray"`
	ValueStr   interface{} `json:"fieldValueString"`
	Type       string      `json:"type"`
}

// Normalize collapses a raw remote value into the canonical shape. Precedence:
// field_value, then fieldValueArray, then fieldValueString, then empty string.
// Normalizing an already-canonical value is a no-op.
func (r RawFieldValue) Normalize() FieldValue {
	value := r.Value
	if value == nil {
		value = r.ValueArray
	}
	if value == nil {
		value = r.ValueStr
	}
	if value == nil {
		value = ""
	}

	key := r.Key
	if key == "" {
		key = r.FieldKey
	}

	return FieldValue{
		ID:    r.ID,
		Key:   key,
		Value: value,
	}
}

// NormalizeFieldValues canonicalizes a slice of raw remote values. A nil input
// yields an empty (never nil) slice so stored documents always carry an array.
func NormalizeFieldValues(raw []RawFieldValue) []FieldValue {
	out := make([]FieldValue, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Normalize())
	}
	return out
}
