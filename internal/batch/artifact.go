package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifact persists the batch result as indented JSON. The file is the
// sole contract handed to downstream transcription workflows.
func WriteArtifact(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// ReadArtifact loads a previously written batch result, for transcription
// runs that start from an existing artifact.
func ReadArtifact(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return &result, nil
}
