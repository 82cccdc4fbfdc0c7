package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
)

// ReadBodyGuarded reads the request body, rejects payloads that contain any
// of the forbidden keys, and restores the body so a later Bind still works.
// Presence of a forbidden key is a validation failure, not a silent strip:
// callers must never be able to supply tenant scope, ownership or prices.
func ReadBodyGuarded(c echo.Context, forbidden ...string) (map[string]json.RawMessage, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(raw))

	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}

	for _, key := range forbidden {
		if _, present := fields[key]; present {
			return nil, fmt.Errorf("field %q may not be set by the caller", key)
		}
	}
	return fields, nil
}

// HasAnyField reports whether at least one of the given keys is present in
// the decoded payload. Partial updates with none of them fail EmptyUpdate.
func HasAnyField(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, present := fields[key]; present {
			return true
		}
	}
	return false
}
