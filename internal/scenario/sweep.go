package scenario

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ossian-dev/pendguard/internal/config"
)

// Sweep runs every named preset concurrently and returns results keyed by
// scenario name. The first run error aborts the sweep result.
func Sweep(ctx context.Context, names []string, log zerolog.Logger) (map[string]*Result, error) {
	results := make([]*Result, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			errs[i] = &UnknownScenarioError{Name: name}
			continue
		}

		wg.Add(1)
		go func(idx int, cfg *config.Config) {
			defer wg.Done()

			runner, err := NewRunner(cfg, log)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = runner.Run(ctx)
		}(i, cfg)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string]*Result, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

type UnknownScenarioError struct {
	Name string
}

func (e *UnknownScenarioError) Error() string {
	return "scenario: unknown preset " + e.Name
}
