package task

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the whole collection as a JSON array.
func Encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

// Decode parses a serialized collection. Records without an id are dropped.
func Decode(value string) ([]Task, error) {
	var raw []Task
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	tasks := make([]Task, 0, len(raw))
	for _, t := range raw {
		if t.ID == "" {
			continue
		}
		if t.Duration < 0 {
			t.Duration = 0
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
