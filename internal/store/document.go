package store

import (
	"context"
	"encoding/json"

	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/schema"
)

// LoadDocument reads key, validates it as doc and decodes it into v.
//
// found is false when the key is absent; v is left untouched in that case.
// A document that is not valid JSON or does not match doc is a read error,
// never an empty result.
func LoadDocument(ctx context.Context, kv KV, key string, doc schema.Document, v any) (found bool, err error) {
	data, found, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := schema.Validate(doc, data); err != nil {
		return false, NewReadError(key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, NewReadError(key, err)
	}
	return true, nil
}

// SaveDocument encodes v with model.Marshal and writes it to key.
func SaveDocument(ctx context.Context, kv KV, key string, v any) error {
	data, err := model.Marshal(v)
	if err != nil {
		return NewWriteError(key, err)
	}
	return kv.Set(ctx, key, data)
}
