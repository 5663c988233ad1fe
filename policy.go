package veil

import (
	"fmt"
	"strings"
)

// Policy is one declarative masking instruction attached to a field.
// A field carries zero or more policies in declaration order; the resolver
// reduces them to at most one strategy and one condition per traversal.
//
// Policies come from three places:
//
//   - the mask struct tag, parsed per the tag grammar
//   - SetFieldPolicies, which replaces tag metadata for one field
//   - RegisterPolicy, which binds a name usable as a tag element
type Policy struct {
	// Skip exempts the field entirely. A skip instruction beats every other
	// policy on the field, including an explicit strategy.
	Skip bool

	// Ref names a registered policy. When set, the other fields are ignored
	// and the registered policy is consulted during resolution.
	Ref string

	// Strategy references a strategy by name.
	Strategy string

	// Condition references a condition by name.
	Condition string

	// Primary marks the explicit strategy/condition pair. A primary policy
	// wins over every non-skip policy on the field. The tag parser produces
	// at most one; with SetFieldPolicies the first primary wins.
	Primary bool

	// BuiltIn resolves Strategy against the built-in registry instead of
	// the registered strategy factories.
	BuiltIn bool
}

// parseMaskTag parses a mask tag value into policies in declaration order.
//
// Grammar, comma separated:
//
//	-                   skip instruction
//	strategy=<name>     the primary pair's strategy (at most one)
//	condition=<name>    the primary pair's condition when strategy= is
//	                    present, a standalone condition policy otherwise
//	<name>              reference to a registered policy
func parseMaskTag(field, tag string) ([]Policy, error) {
	var (
		policies   []Policy
		primaryIdx = -1
		condIdxs   []int
	)

	for _, elem := range strings.Split(tag, ",") {
		elem = strings.TrimSpace(elem)
		switch {
		case elem == "":
			continue

		case elem == "-":
			policies = append(policies, Policy{Skip: true})

		case strings.HasPrefix(elem, "strategy="):
			if primaryIdx >= 0 {
				return nil, fmt.Errorf("%w: multiple strategy= elements (field %s)", ErrInvalidTag, field)
			}
			name := strings.TrimPrefix(elem, "strategy=")
			if name == "" {
				return nil, fmt.Errorf("%w: empty strategy reference (field %s)", ErrInvalidTag, field)
			}
			policies = append(policies, Policy{Strategy: name, Primary: true})
			primaryIdx = len(policies) - 1

		case strings.HasPrefix(elem, "condition="):
			name := strings.TrimPrefix(elem, "condition=")
			if name == "" {
				return nil, fmt.Errorf("%w: empty condition reference (field %s)", ErrInvalidTag, field)
			}
			policies = append(policies, Policy{Condition: name})
			condIdxs = append(condIdxs, len(policies)-1)

		case strings.Contains(elem, "="):
			return nil, fmt.Errorf("%w: unknown element %q (field %s)", ErrInvalidTag, elem, field)

		default:
			policies = append(policies, Policy{Ref: elem})
		}
	}

	// With a primary present, condition= elements bind to it rather than
	// standing alone.
	if primaryIdx >= 0 && len(condIdxs) > 0 {
		if len(condIdxs) > 1 {
			return nil, fmt.Errorf("%w: multiple condition= elements (field %s)", ErrInvalidTag, field)
		}
		ci := condIdxs[0]
		policies[primaryIdx].Condition = policies[ci].Condition
		policies = append(policies[:ci], policies[ci+1:]...)
	}

	return policies, nil
}

// RegisterPolicy binds a name to a policy so it can be referenced as a bare
// tag element. Only Strategy, Condition, and BuiltIn are honored on the
// registered policy; Skip, Ref, and Primary are cleared. Registering a name
// again replaces the previous binding.
//
//	veil.RegisterPolicy("gdpr-email", veil.Policy{Strategy: "hash", BuiltIn: true, Condition: "eu-resident"})
//
//	type User struct {
//	    Email string `mask:"gdpr-email"`
//	}
func RegisterPolicy(name string, p Policy) {
	policyMu.Lock()
	defer policyMu.Unlock()
	namedPolicies[name] = Policy{
		Strategy:  p.Strategy,
		Condition: p.Condition,
		BuiltIn:   p.BuiltIn,
	}
}

// lookupPolicy returns the registered policy for a name.
func lookupPolicy(name string) (Policy, bool) {
	policyMu.RLock()
	defer policyMu.RUnlock()
	p, ok := namedPolicies[name]
	return p, ok
}
