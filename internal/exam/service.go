package exam

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// memoryStore keeps tests in their flattened row form so it behaves like
// the SQL store: every read goes through Assemble and every write through
// Flatten.
type memoryStore struct {
	mu    sync.RWMutex
	tests map[string]Rows
	now   func() time.Time
}

func NewInMemoryStore() Store {
	return &memoryStore{tests: map[string]Rows{}, now: time.Now}
}

func (m *memoryStore) ListTests(_ context.Context, opts ListOpts) (TestPage, error) {
	opts = clampPage(opts)
	q := strings.ToLower(strings.TrimSpace(opts.Q))

	m.mu.RLock()
	all := make([]TestSummary, 0, len(m.tests))
	for _, r := range m.tests {
		t := r.Test
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Type), q) {
			continue
		}
		if opts.Type != "" && t.Type != opts.Type {
			continue
		}
		all = append(all, t)
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b TestSummary) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	page := TestPage{Items: []TestSummary{}, Total: len(all)}
	if opts.Offset < len(all) {
		page.Items = append(page.Items, all[opts.Offset:min(len(all), opts.Offset+opts.Limit)]...)
	}
	return page, nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.tests[id]
	if !ok {
		return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	return Assemble(r), nil
}

func (m *memoryStore) SaveTest(_ context.Context, id string, t Test) (Test, error) {
	if err := Validate(t); err != nil {
		return Test{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var created int64
	if id == "" {
		id = newID()
	} else {
		cur, ok := m.tests[id]
		if !ok {
			return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
		}
		created = cur.Test.CreatedAt
	}
	rows := Flatten(stamp(id, t, created, m.now().Unix()))
	m.tests[id] = rows
	return Assemble(rows), nil
}

func (m *memoryStore) UpdateTest(_ context.Context, id string, p TestPatch) (TestSummary, error) {
	if err := ValidatePatch(p); err != nil {
		return TestSummary{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tests[id]
	if !ok {
		return TestSummary{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	r.Test = applyPatch(r.Test, p)
	r.Test.UpdatedAt = m.now().Unix()
	m.tests[id] = r
	return r.Test, nil
}

func (m *memoryStore) DeleteTest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	delete(m.tests, id)
	return nil
}
