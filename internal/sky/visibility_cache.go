package sky

import (
	"sync"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
)

const (
	// VisibilityCacheTTL is how long visibility windows remain valid.
	VisibilityCacheTTL = 5 * time.Minute

	// VisibilityWindowSpan is the time range searched for rise and set.
	VisibilityWindowSpan = 24 * time.Hour

	// VisibilitySampleStep is the sample interval for visibility calculation.
	VisibilitySampleStep = 10 * time.Minute

	// TraceSpan is the half-width of the altitude trace around now.
	TraceSpan = 12 * time.Hour
)

// VisibilityInfo holds rise, transit and set data for one object.
type VisibilityInfo struct {
	Key          string
	Window       astro.VisibilityWindow
	Trace        []astro.AltitudeSample // now ± TraceSpan
	CurrentAlt   float64
	SunSep       float64 // degrees
	SunSepTier   astro.SunSeparationTier
	LastComputed time.Time
}

// VisibilityCache caches visibility windows for the current observer.
type VisibilityCache struct {
	mu sync.RWMutex

	observer astro.Observer
	opts     []astro.TimesOption
	cache    map[string]*VisibilityInfo
	ttl      time.Duration
}

// NewVisibilityCache creates a cache for obs.
func NewVisibilityCache(obs astro.Observer, opts ...astro.TimesOption) *VisibilityCache {
	return &VisibilityCache{
		observer: obs,
		opts:     opts,
		cache:    make(map[string]*VisibilityInfo),
		ttl:      VisibilityCacheTTL,
	}
}

// SetObserver switches the observer and drops all cached windows when it
// changed.
func (vc *VisibilityCache) SetObserver(obs astro.Observer) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	if vc.observer == obs {
		return
	}
	vc.observer = obs
	vc.cache = make(map[string]*VisibilityInfo)
}

// Get returns cached visibility for key, or nil.
func (vc *VisibilityCache) Get(key string) *VisibilityInfo {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	info, ok := vc.cache[key]
	if !ok {
		return nil
	}
	cp := *info
	return &cp
}

// NeedsRefresh reports whether the entry for key is missing or stale at now.
func (vc *VisibilityCache) NeedsRefresh(key string, now time.Time) bool {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	info, ok := vc.cache[key]
	if !ok {
		return true
	}
	age := now.Sub(info.LastComputed)
	return age < 0 || age > vc.ttl
}

// Update computes and caches visibility for e at now.
// This may take a few milliseconds; the TUI calls it from a command.
func (vc *VisibilityCache) Update(e catalog.Entry, now time.Time) (*VisibilityInfo, error) {
	vc.mu.RLock()
	obs := vc.observer
	opts := vc.opts
	vc.mu.RUnlock()

	info, err := ComputeVisibility(e, obs, now, opts...)
	if err != nil {
		return nil, err
	}

	vc.mu.Lock()
	// Observer changed while computing: the result is stale.
	if vc.observer == obs {
		vc.cache[info.Key] = info
	}
	vc.mu.Unlock()

	cp := *info
	return &cp, nil
}

// Clear removes all cached visibility data.
func (vc *VisibilityCache) Clear() {
	vc.mu.Lock()
	vc.cache = make(map[string]*VisibilityInfo)
	vc.mu.Unlock()
}

// Len returns the number of cached entries.
func (vc *VisibilityCache) Len() int {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return len(vc.cache)
}

// ComputeVisibility computes the window, trace and sun separation of e for obs.
func ComputeVisibility(e catalog.Entry, obs astro.Observer, now time.Time, opts ...astro.TimesOption) (*VisibilityInfo, error) {
	window, err := astro.RiseSet(e.Position, obs, now, VisibilityWindowSpan, VisibilitySampleStep, opts...)
	if err != nil {
		return nil, err
	}
	trace, err := astro.AltitudeTrace(e.Position, obs, now.Add(-TraceSpan), now.Add(TraceSpan), VisibilitySampleStep, opts...)
	if err != nil {
		return nil, err
	}

	sep := astro.SunSeparation(e.Position, now)
	return &VisibilityInfo{
		Key:          e.Key(),
		Window:       window,
		Trace:        trace,
		CurrentAlt:   astro.EquatorialToHorizontal(e.Position, obs, now, opts...).Altitude,
		SunSep:       sep,
		SunSepTier:   astro.GetSunSeparationTier(sep),
		LastComputed: now,
	}, nil
}
