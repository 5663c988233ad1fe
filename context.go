package veil

import "reflect"

// Context carries the mutable state of one masking traversal. A fresh
// Context is created for every top-level Mask or Render call and is never
// shared between calls.
//
// Strategies and conditions receive the Context to inspect the field in
// flight and its siblings. The per-field slots are overwritten as the
// traversal advances; do not retain the Context past the call.
type Context struct {
	// Composite currently being visited
	fields   []FieldDescriptor
	instance reflect.Value

	// Field in flight and its resolved pair
	field     *FieldDescriptor
	strategy  Strategy
	condition Condition

	// Outcome counters for the completion signal
	masked  int
	skipped int
}

// newContext returns an empty context for one traversal.
func newContext() *Context {
	return &Context{}
}

// FieldName returns the name of the field currently in flight, or "" when
// no field is being masked.
func (c *Context) FieldName() string {
	if c.field == nil {
		return ""
	}
	return c.field.Name
}

// Field returns the descriptor of the field currently in flight.
func (c *Context) Field() *FieldDescriptor {
	return c.field
}

// FieldValue returns the current value of a sibling field on the composite
// instance being visited. Condition implementations use it to gate masking
// on related state:
//
//	v, ok := ctx.FieldValue("Region")
func (c *Context) FieldValue(name string) (any, bool) {
	if !c.instance.IsValid() {
		return nil, false
	}
	for i := range c.fields {
		if c.fields[i].Name == name {
			return c.instance.FieldByIndex(c.fields[i].Index).Interface(), true
		}
	}
	return nil, false
}

// enter points the context at a composite and returns the previous slots so
// the caller can restore them after recursing.
func (c *Context) enter(fields []FieldDescriptor, instance reflect.Value) ([]FieldDescriptor, reflect.Value) {
	prevFields, prevInstance := c.fields, c.instance
	c.fields, c.instance = fields, instance
	return prevFields, prevInstance
}

// restore reinstates composite slots saved by enter.
func (c *Context) restore(fields []FieldDescriptor, instance reflect.Value) {
	c.fields, c.instance = fields, instance
}

// setField records the field in flight and its resolved strategy pair.
func (c *Context) setField(d *FieldDescriptor, s Strategy, cond Condition) {
	c.field, c.strategy, c.condition = d, s, cond
}
