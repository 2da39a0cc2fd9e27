package universe

import "sync"

// DefaultSector labels symbols without a sector entry
const DefaultSector = "其他"

// Taxonomy maps symbols to display names and sectors.
// Safe for concurrent use.
type Taxonomy struct {
	mu      sync.RWMutex
	names   map[string]string
	sectors map[string]string
}

// NewTaxonomy indexes instruments
func NewTaxonomy(instruments []Instrument) *Taxonomy {
	t := &Taxonomy{
		names:   make(map[string]string, len(instruments)),
		sectors: make(map[string]string, len(instruments)),
	}
	t.Add(instruments...)
	return t
}

// Add inserts or overwrites entries. Empty fields do not overwrite.
func (t *Taxonomy) Add(instruments ...Instrument) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, inst := range instruments {
		if inst.Name != "" {
			t.names[inst.Symbol] = inst.Name
		}
		if inst.Sector != "" {
			t.sectors[inst.Symbol] = inst.Sector
		}
	}
}

// Name returns the display name, or the symbol itself
func (t *Taxonomy) Name(symbol string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.names[symbol]; ok {
		return n
	}
	return symbol
}

// Sector returns the sector label, or DefaultSector
func (t *Taxonomy) Sector(symbol string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.sectors[symbol]; ok {
		return s
	}
	return DefaultSector
}

// Len returns the number of named symbols
func (t *Taxonomy) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
