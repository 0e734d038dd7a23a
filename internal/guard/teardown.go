package guard

import "sync"

// Teardown is an ordered list of hooks run once when the process is leaving,
// whether through a signal or through the UI quitting.
type Teardown struct {
	mu    sync.Mutex
	hooks []func()
	fired bool
	once  sync.Once
}

func NewTeardown() *Teardown { return &Teardown{} }

// Add appends a hook. Hooks added after Fire are ignored.
func (t *Teardown) Add(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return
	}
	t.hooks = append(t.hooks, fn)
}

// Fire runs every hook in registration order. Later calls do nothing.
func (t *Teardown) Fire() {
	t.once.Do(func() {
		t.mu.Lock()
		t.fired = true
		hooks := t.hooks
		t.hooks = nil
		t.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	})
}

// Len reports how many hooks are waiting.
func (t *Teardown) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.hooks)
}
