package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ossian-dev/pendguard/internal/scenario"
)

// Store persists scenario runs under a base directory, one subdirectory
// per run with metadata.json and states.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                  string             `json:"id"`
	Scenario            string             `json:"scenario"`
	Timestamp           time.Time          `json:"timestamp"`
	Steps               int                `json:"steps"`
	FinalMode           string             `json:"final_mode"`
	Transitions         int                `json:"transitions"`
	UncontrollableSteps int                `json:"uncontrollable_steps"`
	Metrics             map[string]float64 `json:"metrics"`
}

var csvHeader = []string{"time", "theta1", "omega1", "theta2", "omega2", "torque", "confidence", "mode"}

// Save writes one run and returns its generated ID.
func (s *Store) Save(result *scenario.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", result.Scenario, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                  runID,
		Scenario:            result.Scenario,
		Timestamp:           time.Now(),
		Steps:               result.Steps(),
		FinalMode:           result.FinalMode.String(),
		Transitions:         result.Transitions,
		UncontrollableSteps: result.Stats.UncontrollableSteps,
		Metrics:             result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.States[i][0], 'f', 6, 64),
			strconv.FormatFloat(result.States[i][1], 'f', 6, 64),
			strconv.FormatFloat(result.States[i][2], 'f', 6, 64),
			strconv.FormatFloat(result.States[i][3], 'f', 6, 64),
			strconv.FormatFloat(result.Torques[i], 'f', 6, 64),
			strconv.FormatFloat(result.Confidences[i], 'f', 6, 64),
			result.Modes[i].String(),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every readable run, skipping corrupt entries.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trace is the numeric portion of a stored run.
type Trace struct {
	Times       []float64
	States      [][]float64
	Torques     []float64
	Confidences []float64
	Modes       []string
}

// LoadTrace reads states.csv back into columnar form.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &Trace{}
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(csvHeader) {
			continue
		}

		vals := make([]float64, 7)
		ok := true
		for j := 0; j < 7; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, vals[1:5])
		tr.Torques = append(tr.Torques, vals[5])
		tr.Confidences = append(tr.Confidences, vals[6])
		tr.Modes = append(tr.Modes, rec[7])
	}

	return tr, nil
}
