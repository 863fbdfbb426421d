package presentation

import (
	"fmt"
	"regexp"
	"strings"

	"paydash/internal/core"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Palette assigns colors to metric series and tiles.
type Palette struct {
	Series map[core.Metric]string
	Tiles  map[string]string
}

// DefaultPalette returns the stock dashboard colors.
func DefaultPalette() Palette {
	return Palette{
		Series: map[core.Metric]string{
			core.DigitalPayments: "#03A9F4",
			core.NoteVolume:      "#4CAF50",
			core.CoinVolume:      "#FF9800",
		},
		Tiles: map[string]string{
			"instruments": "#4CAF50",
			"channels":    "#03A9F4",
			"systems":     "#FFEB3B",
			"notes":       "#FF5722",
			"coins":       "#9C27B0",
		},
	}
}

// ValidColor reports whether c is a #RRGGBB color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// With returns a copy of p with overrides applied. Series overrides are keyed by metric
// slug, tile overrides by stat key.
func (p Palette) With(series, tiles map[string]string) (Palette, error) {
	out := Palette{
		Series: make(map[core.Metric]string, len(p.Series)),
		Tiles:  make(map[string]string, len(p.Tiles)),
	}
	for k, v := range p.Series {
		out.Series[k] = v
	}
	for k, v := range p.Tiles {
		out.Tiles[k] = v
	}

	for slug, c := range series {
		m, err := core.MetricFromSlug(slug)
		if err != nil {
			return Palette{}, err
		}
		if !ValidColor(c) {
			return Palette{}, fmt.Errorf("series %s: invalid color %q", slug, c)
		}
		out.Series[m] = strings.ToUpper(c)
	}
	for key, c := range tiles {
		if !ValidColor(c) {
			return Palette{}, fmt.Errorf("tile %s: invalid color %q", key, c)
		}
		out.Tiles[key] = strings.ToUpper(c)
	}
	return out, nil
}

func (p Palette) seriesColor(m core.Metric) string {
	if c, ok := p.Series[m]; ok {
		return c
	}
	return "#9E9E9E"
}

func (p Palette) tileColor(key string) string {
	if c, ok := p.Tiles[key]; ok {
		return c
	}
	return "#F0F2F6"
}
