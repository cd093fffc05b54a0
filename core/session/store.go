package session

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
	"github.com/kilianp07/rolloutplan/internal/eventbus"
)

// Store manages planning sessions.
type Store interface {
	Create(s Settings) (View, error)
	Get(id string) (View, error)
	Update(id string, s Settings) (View, error)
	Patch(id string, fn func(*Settings)) (View, error)
	SetDateRange(id string, week int, value string) (View, error)
	ToggleColor(id string, week int, c palette.Color) (View, error)
	Search(id, term string) ([]rollout.WeekData, error)
	Delete(id string) error
	Len() int
}

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*state
	bus  *eventbus.Bus[PlanGenerated]
	now  func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithBus publishes PlanGenerated events on bus.
func WithBus(bus *eventbus.Bus[PlanGenerated]) Option {
	return func(s *MemoryStore) { s.bus = bus }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{data: map[string]*state{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates the settings and starts a new session.
func (s *MemoryStore) Create(set Settings) (View, error) {
	if err := rollout.ValidateBranches(set.Branches); err != nil {
		return View{}, err
	}
	st := &state{
		id:     uuid.NewString(),
		header: set.Header,
		dates:  map[int]string{},
		hidden: map[int]map[palette.Color]bool{},
	}
	ev := s.regenerate(st, set.Branches)
	s.mu.Lock()
	s.data[st.id] = st
	v := st.view()
	s.mu.Unlock()
	s.publish(ev)
	return v, nil
}

// Get returns a view of the session.
func (s *MemoryStore) Get(id string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st.view(), nil
}

// Update replaces the header and branch count. The plan is regenerated only
// when the branch count changes.
func (s *MemoryStore) Update(id string, set Settings) (View, error) {
	return s.Patch(id, func(cur *Settings) { *cur = set })
}

// Patch applies fn to the current settings under the store lock, so
// concurrent partial updates never overwrite each other.
func (s *MemoryStore) Patch(id string, fn func(*Settings)) (View, error) {
	s.mu.Lock()
	st, ok := s.data[id]
	if !ok {
		s.mu.Unlock()
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	set := Settings{Header: st.header, Branches: st.branches}
	fn(&set)
	if err := rollout.ValidateBranches(set.Branches); err != nil {
		s.mu.Unlock()
		return View{}, err
	}
	st.header = set.Header
	st.updatedAt = s.now()
	var ev *PlanGenerated
	if set.Branches != st.branches {
		e := s.regenerate(st, set.Branches)
		ev = &e
	}
	v := st.view()
	s.mu.Unlock()
	if ev != nil {
		s.publish(*ev)
	}
	return v, nil
}

// SetDateRange stores the free-text date range of a week. An empty value
// clears it.
func (s *MemoryStore) SetDateRange(id string, week int, value string) (View, error) {
	return s.mutate(id, week, func(st *state, _ rollout.WeekData) error {
		value = strings.TrimSpace(value)
		if value == "" {
			delete(st.dates, week)
		} else {
			st.dates[week] = value
		}
		return nil
	})
}

// ToggleColor hides or shows the cells painted with c in a week. A hidden
// colour can always be shown again; only colours the week paints can be
// hidden.
func (s *MemoryStore) ToggleColor(id string, week int, c palette.Color) (View, error) {
	return s.mutate(id, week, func(st *state, w rollout.WeekData) error {
		if !st.hidden[week][c] && !slices.Contains(w.Colors(), c) {
			return fmt.Errorf("%w: %s in week %d", ErrUnknownColor, c.Name(), week)
		}
		set := st.hidden[week]
		if set[c] {
			delete(set, c)
			if len(set) == 0 {
				delete(st.hidden, week)
			}
			return nil
		}
		if set == nil {
			set = map[palette.Color]bool{}
			st.hidden[week] = set
		}
		set[c] = true
		return nil
	})
}

// Search filters the session's weeks by term, matching date ranges too.
func (s *MemoryStore) Search(id, term string) ([]rollout.WeekData, error) {
	v, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return rollout.Search(v.Weeks, term, v.DateRanges), nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.data, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) mutate(id string, week int, fn func(*state, rollout.WeekData) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	w, ok := st.week(week)
	if !ok {
		return View{}, fmt.Errorf("%w: %d", ErrUnknownWeek, week)
	}
	if err := fn(st, w); err != nil {
		return View{}, err
	}
	st.updatedAt = s.now()
	return st.view(), nil
}

func (s *MemoryStore) regenerate(st *state, branches int) PlanGenerated {
	start := s.now()
	st.branches = branches
	st.weeks = rollout.Generate(branches)
	st.updatedAt = s.now()
	return PlanGenerated{
		SessionID: st.id,
		Branches:  branches,
		Weeks:     len(st.weeks),
		Pruned:    st.prune(),
		Duration:  st.updatedAt.Sub(start),
		At:        st.updatedAt,
	}
}

func (s *MemoryStore) publish(ev PlanGenerated) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}
