package veil

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	descriptorCache = make(map[reflect.Type][]FieldDescriptor)
	descriptorMu    sync.RWMutex

	fieldOverrides = make(map[reflect.Type]map[string][]Policy)
	overrideMu     sync.RWMutex
)

// descriptorsFor returns the cached descriptor list for a composite type,
// building it on first use. Build failures are not cached.
func descriptorsFor(rt reflect.Type) ([]FieldDescriptor, error) {
	// Fast path: read-lock cache check
	descriptorMu.RLock()
	if cached, ok := descriptorCache[rt]; ok {
		descriptorMu.RUnlock()
		return cached, nil
	}
	descriptorMu.RUnlock()

	// Slow path: build and cache with write-lock
	descriptorMu.Lock()
	defer descriptorMu.Unlock()

	// Double-check pattern
	if cached, ok := descriptorCache[rt]; ok {
		return cached, nil
	}

	descs, err := buildDescriptors(rt)
	if err != nil {
		return nil, err
	}

	descriptorCache[rt] = descs
	return descs, nil
}

// SetFieldPolicies attaches policies to one field of T, replacing any
// tag-derived metadata on that field. Use it for types whose source cannot
// carry mask tags, such as vendored or generated structs.
//
//	veil.SetFieldPolicies[vendor.Account]("Card", veil.Policy{Strategy: "card", BuiltIn: true})
//
// Pointer type arguments are dereferenced. Safe for concurrent use, though
// traversals already in flight keep the descriptor list they started with.
func SetFieldPolicies[T any](field string, policies ...Policy) error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a composite type", ErrUnknownField, rt)
	}
	if _, ok := rt.FieldByName(field); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, rt, field)
	}

	overrideMu.Lock()
	if fieldOverrides[rt] == nil {
		fieldOverrides[rt] = make(map[string][]Policy)
	}
	fieldOverrides[rt][field] = policies
	overrideMu.Unlock()

	// Drop the stale descriptor list so the next traversal rebuilds it
	descriptorMu.Lock()
	delete(descriptorCache, rt)
	descriptorMu.Unlock()

	return nil
}

// overrideFor returns the programmatic policies for a field, if any.
func overrideFor(rt reflect.Type, field string) ([]Policy, bool) {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	policies, ok := fieldOverrides[rt][field]
	return policies, ok
}

// Reset restores all process-wide registries to their built-in state:
// the descriptor cache, field overrides, named policies, and strategy and
// condition factories. This is primarily useful for test isolation.
func Reset() {
	descriptorMu.Lock()
	descriptorCache = make(map[reflect.Type][]FieldDescriptor)
	descriptorMu.Unlock()

	overrideMu.Lock()
	fieldOverrides = make(map[reflect.Type]map[string][]Policy)
	overrideMu.Unlock()

	policyMu.Lock()
	namedPolicies = builtinPolicies()
	strategyFactories = make(map[string]func() (Strategy, error))
	conditionFactories = make(map[string]func() (Condition, error))
	policyMu.Unlock()
}
