// Package market holds the static catalog of bet markets a leg may reference.
package market

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/alanyoungcy/betledger/internal/domain"
)

//go:embed markets.toml
var catalogTOML string

// Market describes one bet market.
type Market struct {
	Key         string        `toml:"key" json:"key"`
	Name        string        `toml:"name" json:"name"`
	LineBearing bool          `toml:"line" json:"line_bearing"`
	PlayerProp  bool          `toml:"player" json:"player_prop"`
	Sides       []domain.Side `toml:"sides" json:"sides"`
}

// Catalog is an immutable set of markets keyed by Market.Key.
type Catalog struct {
	markets map[string]Market
}

type catalogFile struct {
	Market []Market `toml:"market"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogTOML)
	})
	return defaultCatalog, defaultErr
}

// Parse builds a catalog from TOML.
func Parse(data string) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("market: decode catalog: %w", err)
	}
	c := &Catalog{markets: make(map[string]Market, len(f.Market))}
	for _, m := range f.Market {
		if m.Key == "" {
			return nil, fmt.Errorf("market: catalog entry %q has no key", m.Name)
		}
		if _, dup := c.markets[m.Key]; dup {
			return nil, fmt.Errorf("market: duplicate key %q", m.Key)
		}
		c.markets[m.Key] = m
	}
	return c, nil
}

// Get looks up a market by key.
func (c *Catalog) Get(key string) (Market, error) {
	m, ok := c.markets[key]
	if !ok {
		return Market{}, fmt.Errorf("market: %q: %w", key, domain.ErrUnknownMarket)
	}
	return m, nil
}

// List returns all markets sorted by key.
func (c *Catalog) List() []Market {
	out := make([]Market, 0, len(c.markets))
	for _, m := range c.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ValidateLeg checks a leg against its market: the market must exist, the
// side must be offered and line-bearing markets need a line.
func (c *Catalog) ValidateLeg(l domain.Leg) error {
	m, err := c.Get(l.MarketKey)
	if err != nil {
		return err
	}
	if !slices.Contains(m.Sides, l.Side) {
		return fmt.Errorf("market: %s does not offer side %q: %w", m.Key, l.Side, domain.ErrIncompleteLeg)
	}
	if m.LineBearing && l.LineValue == nil {
		return fmt.Errorf("market: %s requires a line: %w", m.Key, domain.ErrIncompleteLeg)
	}
	return nil
}
