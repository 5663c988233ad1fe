package veil

// fieldResolution is the outcome of reducing one field's policies.
// Both strategy and condition may be nil: a field without metadata resolves
// to an empty pair and is traversed by shape alone.
type fieldResolution struct {
	skip      bool
	strategy  Strategy
	condition Condition
}

// resolveField reduces a field's declarative metadata to at most one
// strategy and one condition:
//
//  1. any skip policy exempts the field outright
//  2. otherwise the primary policy, when present, supplies both references
//  3. otherwise policies are scanned in declaration order; the first
//     strategy found and the first condition found win independently,
//     possibly coming from different policies
//
// Resolution runs per traversal: the same descriptor can resolve
// differently as registrations change between calls.
func resolveField(d *FieldDescriptor) (fieldResolution, error) {
	var res fieldResolution

	for i := range d.Policies {
		if d.Policies[i].Skip {
			res.skip = true
			return res, nil
		}
	}

	for i := range d.Policies {
		p := &d.Policies[i]
		if !p.Primary || p.Ref != "" {
			continue
		}
		s, err := instantiateStrategy(d.Name, p.Strategy, p.BuiltIn)
		if err != nil {
			return res, err
		}
		res.strategy = s
		if p.Condition != "" {
			cond, err := instantiateCondition(d.Name, p.Condition)
			if err != nil {
				return res, err
			}
			res.condition = cond
		}
		return res, nil
	}

	var (
		strategyRef  string
		conditionRef string
		builtIn      bool
	)
	for i := range d.Policies {
		p := d.Policies[i]
		if p.Ref != "" {
			named, ok := lookupPolicy(p.Ref)
			if !ok {
				return res, newResolveError(ErrUnresolvableStrategy, d.Name, p.Ref, nil)
			}
			p = named
		}
		if strategyRef == "" && p.Strategy != "" {
			strategyRef = p.Strategy
			builtIn = p.BuiltIn
		}
		if conditionRef == "" && p.Condition != "" {
			conditionRef = p.Condition
		}
	}

	if strategyRef != "" {
		s, err := instantiateStrategy(d.Name, strategyRef, builtIn)
		if err != nil {
			return res, err
		}
		res.strategy = s
	}
	if conditionRef != "" {
		cond, err := instantiateCondition(d.Name, conditionRef)
		if err != nil {
			return res, err
		}
		res.condition = cond
	}

	return res, nil
}

// instantiateStrategy resolves a strategy reference to an instance.
// Registered factories win over builtins for the same name; a builtIn
// policy pins resolution to the builtin registry.
func instantiateStrategy(field, ref string, builtIn bool) (Strategy, error) {
	if builtIn {
		if s, ok := builtinStrategy(ref); ok {
			return s, nil
		}
		return nil, newResolveError(ErrUnresolvableStrategy, field, ref, nil)
	}

	fn, ok := strategyFactory(ref)
	if !ok {
		if s, ok := builtinStrategy(ref); ok {
			return s, nil
		}
		return nil, newResolveError(ErrUnresolvableStrategy, field, ref, nil)
	}
	s, err := fn()
	if err != nil {
		return nil, newResolveError(ErrUnresolvableStrategy, field, ref, err)
	}
	if s == nil {
		return nil, newResolveError(ErrUnresolvableStrategy, field, ref, nil)
	}
	return s, nil
}

// instantiateCondition resolves a condition reference to an instance.
func instantiateCondition(field, ref string) (Condition, error) {
	fn, ok := conditionFactory(ref)
	if !ok {
		return nil, newResolveError(ErrUnresolvableCondition, field, ref, nil)
	}
	cond, err := fn()
	if err != nil {
		return nil, newResolveError(ErrUnresolvableCondition, field, ref, err)
	}
	if cond == nil {
		return nil, newResolveError(ErrUnresolvableCondition, field, ref, nil)
	}
	return cond, nil
}
