package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/ports"
)

// FileExporter writes run reports as timestamped JSON files.
type FileExporter struct {
	dir string
	now func() time.Time
}

var _ ports.ReportExporter = (*FileExporter)(nil)

// NewFileExporter writes reports under dir, creating it on first export.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir, now: time.Now}
}

// Export serializes the report and returns the written file path.
func (e *FileExporter) Export(run domain.RunReport) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	payload, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	name := fmt.Sprintf("run_report_%s.json", e.now().Format("20060102_150405"))
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
