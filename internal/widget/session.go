package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// SaveSession asks the frontend for its full state (settings, sky stack,
// result panels). When path is set the state is also written there as JSON.
func (w *Widget) SaveSession(ctx context.Context, path string) (any, error) {
	state, err := w.sendReceive(ctx, "saveState", nil)
	if err != nil {
		return nil, err
	}
	if m, ok := state.(map[string]any); ok {
		if inner, ok := m["session"]; ok {
			state = inner
		}
	}
	if path == "" {
		return state, nil
	}

	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode session failed: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return nil, fmt.Errorf("write session failed: %w", err)
	}
	return state, nil
}

// RestoreSessionFile restores a state previously written by SaveSession.
func (w *Widget) RestoreSessionFile(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read session failed: %w", err)
	}
	var state map[string]any
	if err := json.Unmarshal(b, &state); err != nil {
		return fmt.Errorf("parse session failed: %w", err)
	}
	return w.RestoreSession(ctx, state)
}

func (w *Widget) RestoreSession(ctx context.Context, state map[string]any) error {
	return w.sendIgnore(ctx, "restoreState", map[string]any{"state": state})
}
