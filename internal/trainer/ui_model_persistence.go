package trainer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

type uiModelPersistenceData struct {
	Leadin  string `yaml:"leadin"`
	Work    string `yaml:"work"`
	Break   string `yaml:"break"`
	Sets    string `yaml:"sets"`
	Halfway bool   `yaml:"halfway"`
}

func (d uiModelPersistenceData) inputs() intervals.Inputs {
	return intervals.Inputs{Leadin: d.Leadin, Work: d.Work, Break: d.Break, Sets: d.Sets, Halfway: d.Halfway}
}

func newUIModelPersistenceData(in intervals.Inputs) uiModelPersistenceData {
	return uiModelPersistenceData{Leadin: in.Leadin, Work: in.Work, Break: in.Break, Sets: in.Sets, Halfway: in.Halfway}
}

// InputsStore remembers the last used field values between runs. Only the inputs are kept,
// never the progress of a session.
type InputsStore struct {
	filePath string
	saved    *uiModelPersistenceData
	logger   *log.Logger
}

// NewInputsStore creates a store backed by filePath
func NewInputsStore(filePath string, logger *log.Logger) *InputsStore {
	if logger == nil {
		panic("InputsStore: logger cannot be nil")
	}
	if filePath == "" {
		panic("InputsStore: file path cannot be empty")
	}
	return &InputsStore{filePath: filePath, logger: logger}
}

// Load returns the stored inputs. A missing file is not an error and returns false.
func (p *InputsStore) Load() (intervals.Inputs, bool, error) {
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Printf("InputsStore: load %s (no existing file)", p.filePath)
			return intervals.Inputs{}, false, nil
		}
		return intervals.Inputs{}, false, fmt.Errorf("read last inputs: %w", err)
	}
	var data uiModelPersistenceData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return intervals.Inputs{}, false, fmt.Errorf("parse last inputs yaml: %w", err)
	}
	p.saved = &data
	p.logger.Printf("InputsStore: load %s -> %+v", p.filePath, data)
	return data.inputs(), true, nil
}

// Save writes inputs unless they equal what was last loaded or saved
func (p *InputsStore) Save(in intervals.Inputs) error {
	data := newUIModelPersistenceData(in)
	if p.saved != nil && *p.saved == data {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal last inputs yaml: %w", err)
	}
	if err := os.WriteFile(p.filePath, raw, 0o644); err != nil {
		return fmt.Errorf("write last inputs: %w", err)
	}
	p.saved = &data
	p.logger.Printf("InputsStore: save %s -> %+v", p.filePath, data)
	return nil
}
