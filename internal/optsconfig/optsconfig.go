// Package optsconfig holds the table-driven CLI defaults §6.3 and §9
// describe: name-to-value map literals consulted by the cobra flag parser
// in cmd/pngopt, and the "empty list falls back to defaults" rule that
// applies when --filters or --deflate is unset or left empty.
package optsconfig

import (
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

// Options is the fully-resolved set of CLI-controlled knobs, mapped
// one-for-one onto §6.3's option table.
type Options struct {
	Input         string
	Output        string
	AutoColorMode bool
	Interlace     bool
	Partition     bool
	Filters       []selector.Strategy
	DeflateLevels []zlibcodec.Level
	Jobs          int
	Verbose       bool
	TraceFile     string
}

// strategyNames maps §6.3's filters=csv tokens to selector.Strategy
// values for parsing; defaulting uses selector.AllStrategies().
var strategyNames = map[string]selector.Strategy{
	"SingleFilter":       selector.SingleFilterStrategy,
	"ScanlineAdaptive":   selector.ScanlineAdaptiveStrategy,
	"WeightedContinuity": selector.WeightedContinuityStrategy,
	"PartitionOptimized": selector.PartitionOptimizedStrategy,
}

// levelNames maps §6.3's deflate=csv tokens to zlibcodec.Level values.
var levelNames = map[string]zlibcodec.Level{
	"Fastest": zlibcodec.Fastest,
	"Fast":    zlibcodec.Fast,
	"Default": zlibcodec.Default,
	"Maximum": zlibcodec.Maximum,
	"Ultra":   zlibcodec.Ultra,
}

// StrategyByName looks up a filters=csv token.
func StrategyByName(name string) (selector.Strategy, bool) {
	s, ok := strategyNames[name]
	return s, ok
}

// LevelByName looks up a deflate=csv token.
func LevelByName(name string) (zlibcodec.Level, bool) {
	l, ok := levelNames[name]
	return l, ok
}

// Defaults returns §6.3's documented defaults: auto-color-mode on,
// interlace off, partition on, every strategy and level, jobs=0 (core
// count), verbose off.
func Defaults() Options {
	return Options{
		AutoColorMode: true,
		Interlace:     false,
		Partition:     true,
		Filters:       selector.AllStrategies(),
		DeflateLevels: zlibcodec.AllLevels(),
		Jobs:          0,
		Verbose:       false,
	}
}

// ResolveFilters applies the "empty list falls back to defaults" rule:
// an empty/unset --filters resolves to every strategy. In either case
// PartitionOptimized is excluded when opts.Partition is false.
func (o Options) ResolveFilters() []selector.Strategy {
	filters := o.Filters
	if len(filters) == 0 {
		filters = selector.AllStrategies()
	}
	if o.Partition {
		return filters
	}
	out := make([]selector.Strategy, 0, len(filters))
	for _, f := range filters {
		if f != selector.PartitionOptimizedStrategy {
			out = append(out, f)
		}
	}
	return out
}

// ResolveLevels applies the same empty-list-falls-back-to-defaults rule
// for --deflate.
func (o Options) ResolveLevels() []zlibcodec.Level {
	if len(o.DeflateLevels) == 0 {
		return zlibcodec.AllLevels()
	}
	return o.DeflateLevels
}
