package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ResultsFileName encodes the run parameters so sweeps over k and chunking
// never overwrite each other.
func ResultsFileName(cfg Config) string {
	return fmt.Sprintf("results_k%d_chunk%d_overlap%d.json", cfg.K, cfg.ChunkSize, cfg.ChunkOverlap)
}

func LoadTestSet(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test set: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing test set: %w", err)
	}
	return items, nil
}

func SaveResult(outDir string, result Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	path := filepath.Join(outDir, ResultsFileName(result.Config))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}
