// Package settings persists the user's training and input preferences.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AllLanguages as a language filter matches every language.
const AllLanguages = -1

// Settings mirrors the preferences screen. Zero-valued dates mean unset.
type Settings struct {
	AdaptiveTrainingCorrectPoints int  `yaml:"adaptive_training_correct_points"`
	AdaptiveTrainingWrongPoints   int  `yaml:"adaptive_training_wrong_points"`
	AdaptiveTrainingEnabled       bool `yaml:"adaptive_training_enabled"`

	TrainingFilterLanguage int `yaml:"training_filter_language"`

	TrainingFilterCreationSinceEnabled     bool      `yaml:"training_filter_creation_since_enabled"`
	TrainingFilterCreationUntilEnabled     bool      `yaml:"training_filter_creation_until_enabled"`
	TrainingFilterModificationSinceEnabled bool      `yaml:"training_filter_modification_since_enabled"`
	TrainingFilterModificationUntilEnabled bool      `yaml:"training_filter_modification_until_enabled"`
	TrainingFilterCreationSinceDate        time.Time `yaml:"training_filter_creation_since_date,omitempty"`
	TrainingFilterCreationUntilDate        time.Time `yaml:"training_filter_creation_until_date,omitempty"`
	TrainingFilterModificationSinceDate    time.Time `yaml:"training_filter_modification_since_date,omitempty"`
	TrainingFilterModificationUntilDate    time.Time `yaml:"training_filter_modification_until_date,omitempty"`

	TrainingFilterPriority int `yaml:"training_filter_priority"`

	AddVocabularyLanguage int `yaml:"add_vocabulary_language"`

	TrainingDirectStart bool `yaml:"training_direct_start"`
}

// Default returns the settings used before anything was saved.
func Default() Settings {
	return Settings{
		AdaptiveTrainingCorrectPoints: 1,
		AdaptiveTrainingWrongPoints:   2,
		AdaptiveTrainingEnabled:       true,
		TrainingFilterLanguage:        AllLanguages,
		TrainingFilterPriority:        1,
		AddVocabularyLanguage:         0,
	}
}

// Load reads settings from path. A missing file yields Default(); keys
// absent from the file keep their default value.
func Load(path string) (Settings, error) {
	s := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Default(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path atomically.
func (s Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.AdaptiveTrainingCorrectPoints < 0 || s.AdaptiveTrainingWrongPoints < 0 {
		return errors.New("adaptive training points must not be negative")
	}
	if s.TrainingFilterPriority < 1 || s.TrainingFilterPriority > 100 {
		return fmt.Errorf("training filter priority %d out of range 1-100", s.TrainingFilterPriority)
	}
	if s.TrainingFilterLanguage < AllLanguages {
		return fmt.Errorf("invalid training filter language %d", s.TrainingFilterLanguage)
	}
	if s.AddVocabularyLanguage < 0 {
		return fmt.Errorf("invalid add vocabulary language %d", s.AddVocabularyLanguage)
	}
	return nil
}

// Set assigns a single setting by its YAML key, parsing value as YAML.
func (s *Settings) Set(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	var v yaml.Node
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		return fmt.Errorf("parse value for %s: %w", key, err)
	}
	if len(v.Content) == 0 {
		return fmt.Errorf("empty value for %s", key)
	}
	doc := yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, v.Content[0]},
	}
	next := *s
	if err := doc.Decode(&next); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

func knownKey(key string) bool {
	t := reflect.TypeOf(Settings{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name == key {
			return true
		}
	}
	return false
}
