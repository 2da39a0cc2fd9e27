// Package universe loads the instrument list, its sector taxonomy and the
// pre-scoring filters.
package universe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Instrument is one tradable symbol
type Instrument struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
	Sector string `yaml:"sector" json:"sector"`
	Market string `yaml:"market,omitempty" json:"market,omitempty"` // listed / otc
}

// Universe is a named instrument list
type Universe struct {
	Name        string       `yaml:"name" json:"name"`
	Instruments []Instrument `yaml:"instruments" json:"instruments"`
}

// Load reads a universe YAML file
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	return Parse(data)
}

// Parse decodes universe YAML, rejecting unknown fields
func Parse(data []byte) (*Universe, error) {
	var u Universe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("parse universe yaml: %w", err)
	}
	if err := u.normalize(); err != nil {
		return nil, err
	}
	return &u, nil
}

func (u *Universe) normalize() error {
	seen := make(map[string]bool, len(u.Instruments))
	for i := range u.Instruments {
		inst := &u.Instruments[i]
		sym, err := NormalizeSymbol(inst.Symbol)
		if err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		if seen[sym] {
			return fmt.Errorf("duplicate symbol %s", sym)
		}
		seen[sym] = true
		inst.Symbol = sym
		if inst.Market == "" {
			inst.Market = MarketOf(sym)
		}
	}
	return nil
}

// Symbols returns the symbols in file order
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.Instruments))
	for i, inst := range u.Instruments {
		out[i] = inst.Symbol
	}
	return out
}

// Subset returns the instruments whose symbols are listed, preserving the
// order of symbols. Unknown symbols are returned as bare instruments.
func (u *Universe) Subset(symbols []string) ([]Instrument, error) {
	index := make(map[string]Instrument, len(u.Instruments))
	for _, inst := range u.Instruments {
		index[inst.Symbol] = inst
	}

	out := make([]Instrument, 0, len(symbols))
	for _, s := range symbols {
		sym, err := NormalizeSymbol(s)
		if err != nil {
			return nil, err
		}
		inst, ok := index[sym]
		if !ok {
			inst = Instrument{Symbol: sym, Market: MarketOf(sym)}
		}
		out = append(out, inst)
	}
	return out, nil
}

// Taxonomy builds the name/sector lookup for this universe
func (u *Universe) Taxonomy() *Taxonomy {
	return NewTaxonomy(u.Instruments)
}
