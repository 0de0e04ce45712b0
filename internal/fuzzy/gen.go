package fuzzy

// Regenerate the Dynamic Rewriter Helper's embedded JS rule table whenever
// rules.yaml changes, so the two engines cannot drift.
//go:generate go run ../../cmd/genfuzzyjs -rules rules.yaml -out ../dynhelper/static/fuzzy_rules.js
