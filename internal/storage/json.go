package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value at key into dst. It reports ok=false when the key
// is absent; a present but undecodable value is an error.
func GetJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
