package config

import (
	"sort"

	"github.com/jpalmerr/crashwatch"
)

// BuildOptions converts parsed configuration into SDK options for
// [crashwatch.New].
func BuildOptions(cfg *Config) ([]crashwatch.Option, error) {
	target, err := BuildTarget(cfg.Target)
	if err != nil {
		return nil, err
	}

	opts := []crashwatch.Option{
		crashwatch.WithTarget(target),
		crashwatch.WithDuration(cfg.Duration.Duration()),
		crashwatch.WithPollInterval(cfg.PollInterval.Duration()),
		crashwatch.WithHistoryFile(cfg.HistoryFile),
		crashwatch.WithTableFile(cfg.TableFile),
		crashwatch.WithDashboardPort(cfg.DashboardPort),
	}

	if cfg.ErrorBackoff > 0 {
		opts = append(opts, crashwatch.WithErrorBackoff(cfg.ErrorBackoff.Duration()))
	}
	if cfg.MissingThreshold != nil {
		opts = append(opts, crashwatch.WithMissingThreshold(*cfg.MissingThreshold))
	}
	if cfg.ErrorThreshold != nil {
		opts = append(opts, crashwatch.WithErrorThreshold(*cfg.ErrorThreshold))
	}
	if cfg.Title != "" {
		opts = append(opts, crashwatch.WithTitle(cfg.Title))
	}

	return opts, nil
}

// BuildTarget converts a TargetConfig to an SDK Target.
func BuildTarget(tc TargetConfig) (crashwatch.Target, error) {
	var opts []crashwatch.TargetOption

	if tc.Driver != "" {
		opts = append(opts, crashwatch.WithDriver(tc.Driver))
	}

	if tc.WaitUntil != "" {
		opts = append(opts, crashwatch.WithWaitUntil(tc.WaitUntil))
	}

	if tc.NavigationTimeout != 0 {
		opts = append(opts, crashwatch.WithNavigationTimeout(tc.NavigationTimeout.Duration()))
	}

	if tc.ReadTimeout != 0 {
		opts = append(opts, crashwatch.WithReadTimeout(tc.ReadTimeout.Duration()))
	}

	if tc.Headless != nil {
		opts = append(opts, crashwatch.WithHeadless(*tc.Headless))
	}

	if len(tc.BrowserArgs) > 0 {
		opts = append(opts, crashwatch.WithBrowserArgs(tc.BrowserArgs...))
	}

	if len(tc.Headers) > 0 {
		opts = append(opts, crashwatch.WithHeaders(mapToKeyValuePairs(tc.Headers)...))
	}

	extractor, err := buildExtractor(tc.Extractor)
	if err != nil {
		return crashwatch.Target{}, err
	}
	if extractor != nil {
		opts = append(opts, crashwatch.WithExtractor(extractor))
	}

	return crashwatch.NewTarget(tc.Name, tc.URL, tc.Selector, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// buildExtractor converts ExtractorConfig to an Extractor function.
// Returns nil for default/empty extractors (SDK uses DefaultExtractor).
func buildExtractor(ec ExtractorConfig) (crashwatch.Extractor, error) {
	switch ec.Type {
	case "", "default":
		return nil, nil
	case "text":
		return crashwatch.TextExtractor, nil
	case "prefix":
		return crashwatch.PrefixExtractor(ec.Prefix), nil
	case "regex":
		return crashwatch.RegexExtractor(ec.Pattern)
	default:
		return crashwatch.ParseExtractor(ec.Type)
	}
}
