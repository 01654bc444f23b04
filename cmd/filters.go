package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/filter"
)

// filterFlags are the sidebar controls as command-line flags.
type filterFlags struct {
	scoreMin float64
	scoreMax float64
	states   []string
	types    []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.scoreMin, "score-min", filter.DefaultScoreMin, "lowest investor score to include (overrides config)")
	cmd.Flags().Float64Var(&f.scoreMax, "score-max", filter.DefaultScoreMax, "highest investor score to include (overrides config)")
	cmd.Flags().StringSliceVar(&f.states, "state", nil, "state(s) to include (repeatable, default all)")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "property type(s) to include (repeatable, default all)")
}

// changed reports whether any filter flag was given explicitly.
func (f *filterFlags) changed(cmd *cobra.Command) bool {
	fl := cmd.Flags()
	return fl.Changed("score-min") || fl.Changed("score-max") || fl.Changed("state") || fl.Changed("type")
}

// criteria starts from the configured defaults (every state and type) and
// applies whichever flags were set.
func (f *filterFlags) criteria(cmd *cobra.Command, ds *dataset.Dataset) (filter.Criteria, error) {
	c := filter.Default(ds)
	if cfg != nil {
		c.ScoreMin, c.ScoreMax = cfg.ScoreMin, cfg.ScoreMax
	}
	fl := cmd.Flags()
	if fl.Changed("score-min") {
		c.ScoreMin = f.scoreMin
	}
	if fl.Changed("score-max") {
		c.ScoreMax = f.scoreMax
	}
	if fl.Changed("state") {
		c.States = trimAll(f.states)
	}
	if fl.Changed("type") {
		c.Types = trimAll(f.types)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// apply resolves the criteria and returns the filtered rows.
func (f *filterFlags) apply(cmd *cobra.Command, ds *dataset.Dataset) (filter.Criteria, *dataset.Dataset, error) {
	c, err := f.criteria(cmd, ds)
	if err != nil {
		return c, nil, err
	}
	return c, filter.Apply(ds, c), nil
}

// describe renders criteria the way reports print the active filter.
func describe(c filter.Criteria) string {
	list := func(vals []string) string {
		if len(vals) == 0 {
			return "none"
		}
		return strings.Join(vals, ", ")
	}
	return fmt.Sprintf("score %g–%g; states: %s; types: %s", c.ScoreMin, c.ScoreMax, list(c.States), list(c.Types))
}

func trimAll(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
