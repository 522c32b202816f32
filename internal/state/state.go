// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/metrics"
	"github.com/litescript/ls-celestial/internal/sky"
)

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	observer  astro.Observer
	timesOpts []astro.TimesOption

	catalogs map[catalog.Kind]*catalog.Catalog
	masked   map[catalog.Kind][]string

	// Current state
	current    sky.Snapshot
	lastUpdate time.Time

	// Event log (ring buffer)
	events       []sky.Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
	metrics         *metrics.Recorder
}

// Config holds configuration for the state manager.
type Config struct {
	Observer        astro.Observer
	TimesOptions    []astro.TimesOption
	MaxEvents       int
	RefreshInterval time.Duration
	// Metrics is optional.
	Metrics *metrics.Recorder
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:       50,
		RefreshInterval: time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		observer:        cfg.Observer,
		timesOpts:       cfg.TimesOptions,
		catalogs:        make(map[catalog.Kind]*catalog.Catalog),
		masked:          make(map[catalog.Kind][]string),
		maxEvents:       maxEvents,
		events:          make([]sky.Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		metrics:         cfg.Metrics,
	}
}

// SetCatalog installs a loaded catalog, replacing any catalog of the same kind.
func (m *Manager) SetCatalog(res *catalog.LoadResult) {
	if res == nil || res.Catalog == nil {
		return
	}
	kind := res.Catalog.Kind

	m.mu.Lock()
	m.catalogs[kind] = res.Catalog
	m.masked[kind] = append([]string(nil), res.Masked...)
	m.mu.Unlock()

	m.metrics.SetMasked(kind.String(), len(res.Masked))
}

// Entries returns the entries of one catalog.
func (m *Manager) Entries(kind catalog.Kind) []catalog.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.catalogs[kind]
	if c == nil {
		return nil
	}
	out := make([]catalog.Entry, len(c.Entries))
	copy(out, c.Entries)
	return out
}

// AllEntries returns the entries of every loaded catalog in display order.
func (m *Manager) AllEntries() []catalog.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allEntriesLocked()
}

func (m *Manager) allEntriesLocked() []catalog.Entry {
	var out []catalog.Entry
	for _, kind := range catalog.Kinds {
		if c := m.catalogs[kind]; c != nil {
			out = append(out, c.Entries...)
		}
	}
	return out
}

// Find looks an object up by name across all loaded catalogs.
func (m *Manager) Find(name string) (catalog.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, kind := range catalog.Kinds {
		if e, ok := m.catalogs[kind].Find(name); ok {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

// Masked returns the names of entries whose coordinates failed to parse.
func (m *Manager) Masked(kind catalog.Kind) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.masked[kind]...)
}

// Observer returns the current observation site.
func (m *Manager) Observer() astro.Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.observer
}

// SetObserver changes the observation site. It takes effect at the next
// Recompute.
func (m *Manager) SetObserver(obs astro.Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = obs
}

// TimesOptions returns the options passed to astro.ComputeTimes.
func (m *Manager) TimesOptions() []astro.TimesOption {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timesOpts
}

// Recompute derives a new sky snapshot for now from the current observer
// and catalogs, stores it and returns it.
func (m *Manager) Recompute(now time.Time) sky.Snapshot {
	m.mu.RLock()
	obs := m.observer
	opts := m.timesOpts
	entries := m.allEntriesLocked()
	m.mu.RUnlock()

	snap := sky.Compute(now, obs, entries, opts...)
	m.Update(snap)
	return snap
}

// Update atomically stores snap and records horizon events relative to the
// previous snapshot.
func (m *Manager) Update(snap sky.Snapshot) {
	m.mu.Lock()
	events := sky.DetectEvents(m.current, snap)
	for _, e := range events {
		m.addEvent(e)
	}
	m.current = snap
	m.lastUpdate = time.Now()
	m.mu.Unlock()

	m.metrics.ObserveRecompute(snap.Elapsed)
	for _, kind := range catalog.Kinds {
		m.metrics.SetAboveHorizon(kind.String(), snap.CountAbove(kind))
	}
	for _, e := range events {
		m.metrics.CountEvent(string(e.Type))
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e sky.Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Sky        sky.Snapshot
	LastUpdate time.Time
	Events     []sky.Event
	Masked     map[catalog.Kind][]string
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	masked := make(map[catalog.Kind][]string, len(m.masked))
	for k, v := range m.masked {
		masked[k] = append([]string(nil), v...)
	}

	return Snapshot{
		Sky:        m.current,
		LastUpdate: m.lastUpdate,
		Events:     m.getEventsOrdered(),
		Masked:     masked,
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []sky.Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]sky.Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]sky.Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []sky.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a snapshot has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.current.IsZero()
}
