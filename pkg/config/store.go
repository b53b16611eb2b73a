// Package config provides typed access to the four JSON configuration
// documents: llm_settings, scoring_config, domain_model, and app_state.
// Documents are loaded once at startup into an in-memory store with
// thread-safe accessors; operator updates persist through an atomic save.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Document file names within the configuration directory.
const (
	fileLLMSettings   = "llm_settings.json"
	fileScoringConfig = "scoring_config.json"
	fileDomainModel   = "domain_model.json"
	fileAppState      = "app_state.json"
)

// Document keys accepted by Save.
const (
	DocLLMSettings   = "llm_settings"
	DocScoringConfig = "scoring_config"
	DocDomainModel   = "domain_model"
	DocAppState      = "app_state"
)

var documentFiles = map[string]string{
	DocLLMSettings:   fileLLMSettings,
	DocScoringConfig: fileScoringConfig,
	DocDomainModel:   fileDomainModel,
	DocAppState:      fileAppState,
}

// Store holds the loaded configuration documents. Reads take the read lock;
// operator updates take the write lock and persist atomically before
// returning, so a failed save never leaves memory and disk diverged.
type Store struct {
	configDir string

	mu       sync.RWMutex
	llm      *LLMSettings
	scoring  *ScoringConfig
	domain   *DomainModel
	appState map[string]any
}

// Stats summarizes the loaded configuration for logging.
type Stats struct {
	Providers    int `json:"providers"`
	Phases       int `json:"phases"`
	Competencies int `json:"competencies"`
	Skills       int `json:"skills"`
}

// Initialize loads, validates, and returns a ready-to-use configuration
// store. Missing documents fall back to built-in defaults with a warning;
// a document that exists but fails to parse is fatal.
func Initialize(configDir string) (*Store, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	s := &Store{configDir: configDir}

	llm := defaultLLMSettings()
	if err := loadDocument(configDir, fileLLMSettings, llm); err != nil {
		return nil, err
	}
	if err := validateLLMSettings(llm); err != nil {
		return nil, NewLoadError(fileLLMSettings, err)
	}
	s.llm = llm

	scoring := defaultScoringConfig()
	if err := loadDocument(configDir, fileScoringConfig, scoring); err != nil {
		return nil, err
	}
	if err := validateScoringConfig(scoring); err != nil {
		return nil, NewLoadError(fileScoringConfig, err)
	}
	s.scoring = scoring

	domain := &DomainModel{Competencies: map[string]Competency{}}
	if err := loadDocument(configDir, fileDomainModel, domain); err != nil {
		return nil, err
	}
	s.domain = domain

	appState := map[string]any{}
	if err := loadDocument(configDir, fileAppState, &appState); err != nil {
		return nil, err
	}
	s.appState = appState

	stats := s.Stats()
	log.Info("Configuration initialized",
		"providers", stats.Providers,
		"phases", stats.Phases,
		"competencies", stats.Competencies,
		"skills", stats.Skills)
	return s, nil
}

// loadDocument reads one JSON document into dst. A missing file leaves dst
// at its default value and logs a warning; malformed JSON is fatal.
func loadDocument(configDir, filename string, dst any) error {
	path := filepath.Join(configDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Configuration document not found, using defaults", "file", filename)
			return nil
		}
		return NewLoadError(filename, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return NewLoadError(filename, err)
	}
	return nil
}

func validateLLMSettings(s *LLMSettings) error {
	if len(s.Providers) == 0 {
		return fmt.Errorf("no LLM providers configured")
	}
	for _, name := range s.Fallback.FallbackOrder {
		if _, ok := s.Providers[name]; !ok {
			return fmt.Errorf("fallback_order references unknown provider %q", name)
		}
	}
	return nil
}

func validateScoringConfig(c *ScoringConfig) error {
	d := c.ScoringParameters.DecayFactor
	if d <= 0 || d > 1 {
		return fmt.Errorf("decay_factor must be in (0, 1], got %v", d)
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func (s *Store) ConfigDir() string { return s.configDir }

// Stats returns configuration statistics for logging.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	skills := 0
	for _, comp := range s.domain.Competencies {
		skills += len(comp.Skills)
	}
	return Stats{
		Providers:    len(s.llm.Providers),
		Phases:       len(s.llm.Phases),
		Competencies: len(s.domain.Competencies),
		Skills:       skills,
	}
}

// Provider returns the default configuration for the named provider.
func (s *Store) Provider(name string) (ProviderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.llm.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return cfg, nil
}

// PhaseConfig returns the provider configuration with per-phase overrides
// applied. An empty phase returns the provider defaults.
func (s *Store) PhaseConfig(provider, phase string) (ProviderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.llm.resolvePhase(provider, phase)
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return cfg, nil
}

// FallbackChain returns the ordered provider chain for gateway fallback.
func (s *Store) FallbackChain() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := make([]string, len(s.llm.Fallback.FallbackOrder))
	copy(chain, s.llm.Fallback.FallbackOrder)
	return chain
}

// CostRate returns the per-1K-token pricing for a provider.
func (s *Store) CostRate(provider string) (CostRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.llm.CostRates[provider]
	return rate, ok
}

// ScoringParams returns the current scoring parameters. Callers read this
// at phase boundaries so operator updates become visible between phases,
// never mid-computation.
func (s *Store) ScoringParams() ScoringParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring.ScoringParameters
}

// Thresholds returns the current dual-gate thresholds.
func (s *Store) Thresholds() GateThresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring.GateThresholds
}

// DomainModel returns the loaded domain model. The model is immutable after
// load and safe to share.
func (s *Store) DomainModel() *DomainModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domain
}

// AppState returns a copy of the app_state document.
func (s *Store) AppState() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.appState))
	for k, v := range s.appState {
		out[k] = v
	}
	return out
}

// SetAppState replaces one app_state key and persists the document.
func (s *Store) SetAppState(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.appState[key]
	s.appState[key] = value
	if err := s.saveLocked(DocAppState); err != nil {
		if had {
			s.appState[key] = prev
		} else {
			delete(s.appState, key)
		}
		return err
	}
	return nil
}

// SetDecayFactor updates the scoring decay factor and persists the scoring
// document. The new value is visible to in-flight evaluations only at their
// next ScoringParams read (a phase boundary).
func (s *Store) SetDecayFactor(d float64) error {
	if d <= 0 || d > 1 {
		return fmt.Errorf("decay_factor must be in (0, 1], got %v", d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.scoring.ScoringParameters.DecayFactor
	s.scoring.ScoringParameters.DecayFactor = d
	if err := s.saveLocked(DocScoringConfig); err != nil {
		s.scoring.ScoringParameters.DecayFactor = prev
		return err
	}
	return nil
}

// UpdateGateThreshold updates one threshold band and persists the scoring
// document. gate is "performance" or "evidence"; level names the band.
func (s *Store) UpdateGateThreshold(gate, level string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.scoring.GateThresholds

	switch gate {
	case "performance":
		switch level {
		case "at_level":
			s.scoring.GateThresholds.Performance.AtLevel = value
		case "approaching":
			s.scoring.GateThresholds.Performance.Approaching = value
		case "developing":
			s.scoring.GateThresholds.Performance.Developing = value
		default:
			return fmt.Errorf("unknown performance threshold level %q", level)
		}
	case "evidence":
		switch level {
		case "sufficient":
			s.scoring.GateThresholds.Evidence.Sufficient = value
		case "approaching":
			s.scoring.GateThresholds.Evidence.Approaching = value
		case "developing":
			s.scoring.GateThresholds.Evidence.Developing = value
		default:
			return fmt.Errorf("unknown evidence threshold level %q", level)
		}
	default:
		return fmt.Errorf("unknown gate %q", gate)
	}

	if err := s.saveLocked(DocScoringConfig); err != nil {
		s.scoring.GateThresholds = prev
		return err
	}
	return nil
}

// Save persists the named document to disk atomically.
func (s *Store) Save(doc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(doc)
}

func (s *Store) saveLocked(doc string) error {
	filename, ok := documentFiles[doc]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, doc)
	}
	var payload any
	switch doc {
	case DocLLMSettings:
		payload = s.llm
	case DocScoringConfig:
		payload = s.scoring
	case DocDomainModel:
		payload = s.domain
	case DocAppState:
		payload = s.appState
	}
	return writeJSONAtomic(filepath.Join(s.configDir, filename), payload)
}
