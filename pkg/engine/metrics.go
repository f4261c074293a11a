package engine

import "github.com/uber-go/tally/v4"

// sessionMetrics exposes the session's operational counters. Recoverable
// Skip outcomes are counted per category so a genuine mistake (undefined
// builtin, unresolved name) stays visible in diagnostics even though the
// value model deliberately cannot distinguish it from an unfired event.
type sessionMetrics struct {
	rounds          tally.Counter
	nodeEvals       tally.Counter
	cacheHits       tally.Counter
	cacheMisses     tally.Counter
	unresolvedVars  tally.Counter
	builtinMisses   tally.Counter
	patternMisses   tally.Counter
	fatalAborts     tally.Counter
}

func newSessionMetrics(scope tally.Scope) *sessionMetrics {
	if scope == nil {
		scope = tally.NoopScope
	}
	return &sessionMetrics{
		rounds:         scope.Counter("rounds"),
		nodeEvals:      scope.Counter("node_evals"),
		cacheHits:      scope.Counter("cache_hits"),
		cacheMisses:    scope.Counter("cache_misses"),
		unresolvedVars: scope.Counter("skip_unresolved_variable"),
		builtinMisses:  scope.Counter("skip_undefined_builtin"),
		patternMisses:  scope.Counter("skip_pattern_exhausted"),
		fatalAborts:    scope.Counter("fatal_aborts"),
	}
}
