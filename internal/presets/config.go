package presets

import (
	"github.com/wonny/leadscan/internal/contracts"
)

// File is a named set of pipeline parameter presets
type File struct {
	Meta    Meta     `yaml:"meta" json:"meta"`
	Presets []Preset `yaml:"presets" json:"presets"`
}

// Meta 메타 정보
type Meta struct {
	ID      string `yaml:"id" json:"id"`
	Version string `yaml:"version" json:"version"`
}

// Preset overrides some analysis parameters. Omitted fields keep the caller's value.
type Preset struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Symbols     []string `yaml:"symbols,omitempty" json:"symbols,omitempty"`
	TopN        *int     `yaml:"top_n,omitempty" json:"top_n,omitempty"`
	OrderPct    *int     `yaml:"order_pct,omitempty" json:"order_pct,omitempty"`
	StopLossPct *int     `yaml:"stop_loss_pct,omitempty" json:"stop_loss_pct,omitempty"`
	Mover       string   `yaml:"mover,omitempty" json:"mover,omitempty"`
	Side        string   `yaml:"side,omitempty" json:"side,omitempty"`
}

// Find returns the preset with the given name
func (f *File) Find(name string) (Preset, bool) {
	for _, p := range f.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Names lists the presets in file order
func (f *File) Names() []string {
	names := make([]string, len(f.Presets))
	for i, p := range f.Presets {
		names[i] = p.Name
	}
	return names
}

// Apply overlays the preset on params. Dates are never touched.
func (p Preset) Apply(params contracts.Params) contracts.Params {
	if len(p.Symbols) > 0 {
		params.Symbols = append([]string(nil), p.Symbols...)
	}
	if p.TopN != nil {
		params.TopN = *p.TopN
	}
	if p.OrderPct != nil {
		params.OrderPct = *p.OrderPct
	}
	if p.StopLossPct != nil {
		params.StopLossPct = *p.StopLossPct
	}
	if p.Mover != "" {
		params.Mover = contracts.Mover(p.Mover)
	}
	if p.Side != "" {
		params.Side = contracts.Side(p.Side)
	}
	return params
}
