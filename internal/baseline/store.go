package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"hrvmon/internal/core"
)

// FileStore persists the baseline to a JSON file so a later session can
// skip calibration. A file missing any of the four metrics, holding a
// negative value, or failing to parse is treated as absent: the session
// recalibrates instead of trusting a partial reference.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type storedBaseline struct {
	CapturedAt time.Time            `json:"capturedAt"`
	Metrics    core.BaselineMetrics `json:"baselineMetrics"`
}

// Save writes the baseline with its capture timestamp.
func (s *FileStore) Save(m core.BaselineMetrics) error {
	data, err := json.MarshalIndent(storedBaseline{
		CapturedAt: time.Now(),
		Metrics:    m,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing baseline file: %w", err)
	}
	return nil
}

// requiredFields are the metrics a stored baseline must carry to be usable.
var requiredFields = []string{"hr", "sdnn", "rmssd", "pnn50"}

// Load returns the stored baseline and whether a complete one exists.
// Only I/O problems other than absence are errors.
func (s *FileStore) Load() (core.BaselineMetrics, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.BaselineMetrics{}, false, nil
	}
	if err != nil {
		return core.BaselineMetrics{}, false, fmt.Errorf("reading baseline file: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return core.BaselineMetrics{}, false, nil
	}
	for _, field := range requiredFields {
		v := gjson.GetBytes(data, "baselineMetrics."+field)
		if !v.Exists() || v.Float() < 0 {
			return core.BaselineMetrics{}, false, nil
		}
	}

	return core.BaselineMetrics{
		HR:    gjson.GetBytes(data, "baselineMetrics.hr").Float(),
		SDNN:  gjson.GetBytes(data, "baselineMetrics.sdnn").Float(),
		RMSSD: gjson.GetBytes(data, "baselineMetrics.rmssd").Float(),
		PNN50: gjson.GetBytes(data, "baselineMetrics.pnn50").Float(),
	}, true, nil
}
