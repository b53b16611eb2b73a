// Package activity loads and validates activity definition files. One JSON
// file per activity in a discovered directory; invalid files are rejected
// individually while the rest continue to load.
package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
)

// CacheTTL bounds how long a loaded file is trusted without a reload even
// when its mtime is unchanged.
const CacheTTL = 5 * time.Minute

// ErrNotFound is returned when no activity carries the requested id.
var ErrNotFound = fmt.Errorf("activity not found")

type cacheEntry struct {
	spec     *models.ActivitySpec
	path     string
	mtime    time.Time
	loadedAt time.Time
}

// Manager loads activity specs from a directory with an mtime+TTL cache.
// Safe for concurrent use.
type Manager struct {
	dir    string
	events *eventlog.Logger

	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

// NewManager creates a manager over the given activities directory.
func NewManager(dir string, events *eventlog.Logger) *Manager {
	return &Manager{
		dir:    dir,
		events: events,
		cache:  make(map[string]*cacheEntry),
	}
}

// LoadAll scans the directory and returns all valid activities keyed by id.
// Cached entries are reused while their file's mtime is unchanged and the
// TTL has not lapsed; force bypasses the cache entirely.
func (m *Manager) LoadAll(force bool) (map[string]*models.ActivitySpec, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read activities directory %s: %w", m.dir, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byPath := make(map[string]*cacheEntry, len(m.cache))
	for _, entry := range m.cache {
		byPath[entry.path] = entry
	}

	loaded := make(map[string]*models.ActivitySpec)
	next := make(map[string]*cacheEntry)
	now := time.Now()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		if !force {
			if cached, ok := byPath[path]; ok &&
				cached.mtime.Equal(info.ModTime()) &&
				now.Sub(cached.loadedAt) < CacheTTL {
				next[cached.spec.ActivityID] = cached
				loaded[cached.spec.ActivityID] = cached.spec
				continue
			}
		}

		spec, err := loadFile(path)
		if err != nil {
			m.events.LogError("activity_manager", eventlog.KindActivitySchema,
				fmt.Sprintf("rejected activity file %s: %v", entry.Name(), err),
				map[string]any{"file": entry.Name()})
			continue
		}
		next[spec.ActivityID] = &cacheEntry{
			spec:     spec,
			path:     path,
			mtime:    info.ModTime(),
			loadedAt: now,
		}
		loaded[spec.ActivityID] = spec
	}

	m.cache = next
	return loaded, nil
}

// loadFile parses and validates a single activity file.
func loadFile(path string) (*models.ActivitySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	var spec models.ActivitySpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validateSpec(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Get returns one activity by id, loading the directory if needed.
func (m *Manager) Get(activityID string) (*models.ActivitySpec, error) {
	m.mu.RLock()
	entry, ok := m.cache[activityID]
	fresh := ok && time.Since(entry.loadedAt) < CacheTTL
	m.mu.RUnlock()
	if fresh {
		return entry.spec, nil
	}

	activities, err := m.LoadAll(false)
	if err != nil {
		return nil, err
	}
	spec, ok := activities[activityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, activityID)
	}
	return spec, nil
}

// ByType returns loaded activities of one type, ordered by id.
func (m *Manager) ByType(activityType string) ([]*models.ActivitySpec, error) {
	activities, err := m.LoadAll(false)
	if err != nil {
		return nil, err
	}
	var out []*models.ActivitySpec
	for _, spec := range activities {
		if spec.ActivityType == activityType {
			out = append(out, spec)
		}
	}
	sortSpecs(out)
	return out, nil
}

// BySkill returns loaded activities targeting one skill, ordered by id.
func (m *Manager) BySkill(skillID string) ([]*models.ActivitySpec, error) {
	activities, err := m.LoadAll(false)
	if err != nil {
		return nil, err
	}
	var out []*models.ActivitySpec
	for _, spec := range activities {
		if spec.TargetSkill == skillID {
			out = append(out, spec)
		}
	}
	sortSpecs(out)
	return out, nil
}

// Stats summarizes the loaded inventory.
type Stats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
}

// Stats returns counts over the currently loadable activities.
func (m *Manager) Stats() (Stats, error) {
	activities, err := m.LoadAll(false)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(activities), ByType: make(map[string]int)}
	for _, spec := range activities {
		stats.ByType[spec.ActivityType]++
	}
	return stats, nil
}

func sortSpecs(specs []*models.ActivitySpec) {
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].ActivityID < specs[j].ActivityID
	})
}
