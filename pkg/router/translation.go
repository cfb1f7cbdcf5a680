package router

import (
	"regexp"
	"sort"

	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

// ModelPattern maps a regex pattern to a target value, tried in
// descending Priority order with the first match winning. It is used
// both by ModelTranslation (target is a backend-native model name) and
// by ModelRouting (target is a backend name).
type ModelPattern struct {
	Pattern  string
	Target   string
	Priority int
}

type compiledPattern struct {
	re       *regexp.Regexp
	target   string
	priority int
}

// compilePatterns compiles and priority-sorts (descending) a pattern
// list. Patterns that fail to compile are skipped rather than causing
// an error, since a single malformed rule should not disable routing
// for every request.
func compilePatterns(patterns []ModelPattern) []compiledPattern {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		compiled = append(compiled, compiledPattern{re: re, target: p.Target, priority: p.Priority})
	}
	sort.SliceStable(compiled, func(i, j int) bool { return compiled[i].priority > compiled[j].priority })
	return compiled
}

func matchPattern(compiled []compiledPattern, value string) (string, bool) {
	for _, p := range compiled {
		if p.re.MatchString(value) {
			return p.target, true
		}
	}
	return "", false
}

// ModelTranslation maps a canonical model name the caller requests to
// the name a specific backend expects. Resolution tries, in order:
// a backend-specific exact match, a global exact match, a priority-
// sorted regex pattern match, a hybrid default, and finally passthrough
// (the requested name is used unchanged) — unless StrictMode is set, in
// which case an unresolved request fails instead of passing through.
type ModelTranslation struct {
	// PerBackend maps backendName -> requestedModel -> backendModel.
	PerBackend map[string]map[string]string
	// Global maps requestedModel -> backendModel, applied when no
	// backend-specific entry matches.
	Global map[string]string
	// Patterns is checked, priority-sorted, after exact matches fail.
	Patterns []ModelPattern
	// HybridDefault is used when nothing else matches and the caller
	// wants a concrete fallback rather than passthrough.
	HybridDefault string
	// StrictMode turns an unresolved request (no exact match, no
	// pattern match, no HybridDefault) into a *irerrors.RouterError
	// instead of silently passing the requested model name through.
	StrictMode bool
}

// Resolve returns the model name to send to backendName for a
// requested model name, following the precedence documented on
// ModelTranslation. The error return is non-nil only when StrictMode is
// set and no translation could be found.
func (t ModelTranslation) Resolve(backendName, requested string) (string, error) {
	if per, ok := t.PerBackend[backendName]; ok {
		if m, ok := per[requested]; ok {
			return m, nil
		}
	}
	if m, ok := t.Global[requested]; ok {
		return m, nil
	}
	if m, ok := matchPattern(compilePatterns(t.Patterns), requested); ok {
		return m, nil
	}
	if t.HybridDefault != "" {
		return t.HybridDefault, nil
	}
	if t.StrictMode {
		return "", irerrors.NewRouterError(
			"strict model translation: no mapping for model "+requested+" on backend "+backendName,
			[]string{backendName}, nil)
	}
	return requested, nil
}
