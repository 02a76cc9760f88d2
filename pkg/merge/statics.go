package merge

import (
	"sync"
	"time"
)

// StaticTable maps global variable names to string values, consulted
// independently of any per-request variable set. It is read-mostly shared
// state: written rarely at runtime, read by every merge.
type StaticTable struct {
	mu   sync.RWMutex
	vars map[string]string
}

func NewStaticTable() *StaticTable {
	t := &StaticTable{vars: make(map[string]string)}
	t.Set("hoy", time.Now().Format(dateLayout))
	return t
}

func (t *StaticTable) Get(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value, ok := t.vars[name]
	return value, ok
}

// Set upserts a static variable, visible to all subsequent merges.
func (t *StaticTable) Set(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.vars[name] = value
}

// Statics is the process-wide table used by engines that are not given
// their own.
var Statics = NewStaticTable()
