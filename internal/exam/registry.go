package exam

import (
	"fmt"
)

// Registry holds the named exam configurations. It is built once at startup
// and injected wherever needed; contents never change after construction.
type Registry struct {
	configs map[string]Config
	order   []string
}

// NewRegistry returns the three production exam variants, modeled on the
// real certification exam formats.
func NewRegistry() *Registry {
	return newRegistry(
		Config{
			Name:             "standard",
			Title:            "Standard Mock Exam",
			TotalQuestions:   40,
			TimeLimitMinutes: 150,
			PassingScore:     0.60,
			Categories: []CategoryQuota{
				{Category: "concrete", Count: 12},
				{Category: "structures", Count: 10},
				{Category: "construction", Count: 10},
				{Category: "maintenance", Count: 8},
			},
			Difficulties: []DifficultyRatio{
				{Difficulty: DifficultyBasic, Ratio: 0.3},
				{Difficulty: DifficultyStandard, Ratio: 0.5},
				{Difficulty: DifficultyAdvanced, Ratio: 0.2},
			},
		},
		Config{
			Name:             "full",
			Title:            "Full Exam Reproduction",
			TotalQuestions:   60,
			TimeLimitMinutes: 180,
			PassingScore:     0.65,
			Categories: []CategoryQuota{
				{Category: "concrete", Count: 18},
				{Category: "structures", Count: 15},
				{Category: "construction", Count: 15},
				{Category: "maintenance", Count: 12},
			},
			Difficulties: []DifficultyRatio{
				{Difficulty: DifficultyBasic, Ratio: 0.25},
				{Difficulty: DifficultyStandard, Ratio: 0.5},
				{Difficulty: DifficultyAdvanced, Ratio: 0.25},
			},
		},
		Config{
			Name:             "quick",
			Title:            "Quick Mock Exam",
			TotalQuestions:   20,
			TimeLimitMinutes: 60,
			PassingScore:     0.60,
			Categories: []CategoryQuota{
				{Category: "concrete", Count: 6},
				{Category: "structures", Count: 5},
				{Category: "construction", Count: 5},
				{Category: "maintenance", Count: 4},
			},
			Difficulties: []DifficultyRatio{
				{Difficulty: DifficultyBasic, Ratio: 0.4},
				{Difficulty: DifficultyStandard, Ratio: 0.4},
				{Difficulty: DifficultyAdvanced, Ratio: 0.2},
			},
		},
	)
}

func newRegistry(configs ...Config) *Registry {
	r := &Registry{configs: make(map[string]Config, len(configs))}
	for _, cfg := range configs {
		r.configs[cfg.Name] = cfg
		r.order = append(r.order, cfg.Name)
	}
	return r
}

// Get returns the config registered under name. Unknown names fail with
// ErrConfigNotFound; callers decide whether that is user error or a bug.
func (r *Registry) Get(name string) (Config, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	// Hand out copies of the slices so a careless caller cannot edit the
	// registry's quotas in place.
	cfg.Categories = append([]CategoryQuota(nil), cfg.Categories...)
	cfg.Difficulties = append([]DifficultyRatio(nil), cfg.Difficulties...)
	return cfg, nil
}

// Names lists registered exam types in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
