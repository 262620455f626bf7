// Package catalog caches the scenario list and models the sub-scenario tab
// strip.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/format"
)

// RestartFailedMessage is shown when a finished scenario cannot be located
// again for a restart.
const RestartFailedMessage = "Could not restart scenario. Please select it again from the main menu."

// ErrScenarioNotFound is returned by Resolve when neither the id nor the
// name matches a known scenario.
var ErrScenarioNotFound = errors.New("scenario not found")

// Lister fetches the scenario list.
type Lister interface {
	ListScenarios(ctx context.Context) ([]client.Scenario, error)
}

// Catalog is a concurrency-safe cache of scenarios that keeps list order.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]client.Scenario
	order []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byID: make(map[string]client.Scenario)}
}

// Replace swaps the cache for list. Scenarios without an id are skipped; a
// repeated id keeps its first position and the last definition.
func (c *Catalog) Replace(list []client.Scenario) {
	byID := make(map[string]client.Scenario, len(list))
	order := make([]string, 0, len(list))
	for _, sc := range list {
		if sc.ID == "" {
			continue
		}
		if _, dup := byID[sc.ID]; !dup {
			order = append(order, sc.ID)
		}
		byID[sc.ID] = sc
	}
	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
}

// Put inserts or refreshes a single scenario, e.g. after fetching its detail.
func (c *Catalog) Put(sc client.Scenario) {
	if sc.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[sc.ID]; !ok {
		c.order = append(c.order, sc.ID)
	}
	c.byID[sc.ID] = sc
}

// Get looks a scenario up by id.
func (c *Catalog) Get(id string) (client.Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.byID[id]
	return sc, ok
}

// ByName returns the first scenario, in list order, with the given name.
func (c *Catalog) ByName(name string) (client.Scenario, bool) {
	if name == "" {
		return client.Scenario{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if sc := c.byID[id]; sc.Name == name {
			return sc, true
		}
	}
	return client.Scenario{}, false
}

// List returns the cached scenarios in display order.
func (c *Catalog) List() []client.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]client.Scenario, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of cached scenarios.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Load fetches the list and replaces the cache with it.
func (c *Catalog) Load(ctx context.Context, l Lister) ([]client.Scenario, error) {
	list, err := l.ListScenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	c.Replace(list)
	return c.List(), nil
}

// Resolve finds the scenario to restart: by id, then by name in the cache,
// then by name after reloading the list.
func (c *Catalog) Resolve(ctx context.Context, l Lister, id, name string) (client.Scenario, error) {
	if sc, ok := c.Get(id); ok {
		return sc, nil
	}
	if sc, ok := c.ByName(name); ok {
		return sc, nil
	}
	if _, err := c.Load(ctx, l); err != nil {
		return client.Scenario{}, err
	}
	if sc, ok := c.Get(id); ok {
		return sc, nil
	}
	if sc, ok := c.ByName(name); ok {
		return sc, nil
	}
	return client.Scenario{}, fmt.Errorf("%w: id=%q name=%q", ErrScenarioNotFound, id, name)
}

// Tabs is the sub-scenario strip of one scenario.
type Tabs struct {
	subs   []client.SubScenarioInfo
	active int
}

// NewTabs builds the strip for sc with the first tab selected. Scenarios
// without sub-scenarios produce an empty strip.
func NewTabs(sc client.Scenario) Tabs {
	return Tabs{subs: sc.SubScenarios}
}

// Len returns the number of tabs.
func (t Tabs) Len() int { return len(t.subs) }

// Active returns the selected index, or -1 when there are no tabs.
func (t Tabs) Active() int {
	if len(t.subs) == 0 {
		return -1
	}
	return t.active
}

// Labels returns the shortened, sanitized tab titles.
func (t Tabs) Labels() []string {
	out := make([]string, len(t.subs))
	for i, s := range t.subs {
		out[i] = format.Sanitize(format.TabLabel(s.Name))
	}
	return out
}

// Description returns the selected sub-scenario's description.
func (t Tabs) Description() string {
	if len(t.subs) == 0 {
		return ""
	}
	return format.Sanitize(t.subs[t.active].Description)
}

// Select moves to tab i. It reports false when i is out of range or already
// selected, in which case no new session should be started.
func (t *Tabs) Select(i int) bool {
	if i < 0 || i >= len(t.subs) || i == t.active {
		return false
	}
	t.active = i
	return true
}

// Next selects the following tab, wrapping around.
func (t *Tabs) Next() bool {
	if len(t.subs) < 2 {
		return false
	}
	return t.Select((t.active + 1) % len(t.subs))
}

// Prev selects the preceding tab, wrapping around.
func (t *Tabs) Prev() bool {
	if len(t.subs) < 2 {
		return false
	}
	return t.Select((t.active - 1 + len(t.subs)) % len(t.subs))
}
