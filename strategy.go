package veil

import "sync"

// Strategy transforms a sensitive value into its masked form.
//
// Strategies must be safe for concurrent use: one instance may serve many
// traversals at once.
type Strategy interface {
	// Mask returns the masked replacement for value. The result must be
	// assignable to the originating field's type; returning nil writes the
	// field's zero value. ctx describes the field in flight.
	Mask(value any, ctx *Context) any
}

// Condition gates a strategy at runtime. When a field resolves both a
// strategy and a condition, the strategy runs only if Applies returns true.
//
// Conditions read sibling state through the context:
//
//	func (c auditOnly) Applies(ctx *veil.Context) bool {
//	    v, ok := ctx.FieldValue("Audited")
//	    return ok && v == true
//	}
type Condition interface {
	// Applies reports whether the field currently in flight should be masked.
	Applies(ctx *Context) bool
}

// Mutable name registries. Built-in strategies live in a separate immutable
// map and are never affected by registration.
var (
	policyMu           sync.RWMutex
	namedPolicies      = builtinPolicies()
	strategyFactories  = make(map[string]func() (Strategy, error))
	conditionFactories = make(map[string]func() (Condition, error))
)

// RegisterStrategy binds a name to a strategy factory. The factory runs each
// time a traversal resolves the name; a factory error surfaces as an
// unresolvable strategy on the field that referenced it.
//
// Registering a strategy also registers a same-named policy referencing it,
// unless a policy with that name already exists, so the name works directly
// as a bare tag element.
func RegisterStrategy(name string, fn func() (Strategy, error)) {
	policyMu.Lock()
	defer policyMu.Unlock()
	strategyFactories[name] = fn
	if _, ok := namedPolicies[name]; !ok {
		namedPolicies[name] = Policy{Strategy: name}
	}
}

// RegisterCondition binds a name to a condition factory. The factory runs
// each time a traversal resolves the name; a factory error surfaces as an
// unresolvable condition on the field that referenced it.
//
// Registering a condition also registers a same-named policy referencing it,
// unless a policy with that name already exists.
func RegisterCondition(name string, fn func() (Condition, error)) {
	policyMu.Lock()
	defer policyMu.Unlock()
	conditionFactories[name] = fn
	if _, ok := namedPolicies[name]; !ok {
		namedPolicies[name] = Policy{Condition: name}
	}
}

// strategyFactory returns the registered factory for a strategy name.
func strategyFactory(name string) (func() (Strategy, error), bool) {
	policyMu.RLock()
	defer policyMu.RUnlock()
	fn, ok := strategyFactories[name]
	return fn, ok
}

// conditionFactory returns the registered factory for a condition name.
func conditionFactory(name string) (func() (Condition, error), bool) {
	policyMu.RLock()
	defer policyMu.RUnlock()
	fn, ok := conditionFactories[name]
	return fn, ok
}
