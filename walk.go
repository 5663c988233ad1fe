package veil

import (
	"context"
	"fmt"
	"reflect"
)

// SelfMasker allows a composite to bypass reflection and handle its own
// masking. When a type implements SelfMasker, the walker calls MaskFields
// instead of traversing its fields. Implement it for hot paths or for
// masking logic that tags cannot express.
type SelfMasker interface {
	// MaskFields masks the receiver's own fields. The receiver is part of a
	// private copy, so mutations are safe.
	MaskFields(ctx *Context) error
}

// walk traverses an addressable composite, applying each field's resolved
// policy by shape. The context's composite slots are restored on return so
// sibling conditions observe the correct instance after recursion.
func (cfg *config) walk(ctx *Context, rv reflect.Value) error {
	if rv.CanAddr() {
		if sm, ok := rv.Addr().Interface().(SelfMasker); ok {
			return sm.MaskFields(ctx)
		}
	}

	descs, err := descriptorsFor(rv.Type())
	if err != nil {
		return err
	}

	prevFields, prevInstance := ctx.enter(descs, rv)
	defer ctx.restore(prevFields, prevInstance)

	for i := range descs {
		if err := cfg.walkField(ctx, &descs[i], rv.FieldByIndex(descs[i].Index)); err != nil {
			return err
		}
	}
	return nil
}

// walkField applies one field's policy. A skip instruction leaves the field
// untouched without recursion. Resolution and application failures abort
// the traversal unless the call is lenient.
func (cfg *config) walkField(ctx *Context, d *FieldDescriptor, fv reflect.Value) error {
	res, err := resolveField(d)
	if err != nil {
		return cfg.fail(ctx, d.Name, err)
	}
	if res.skip {
		ctx.skipped++
		return nil
	}

	fv, ok := deref(fv)
	if !ok {
		return nil
	}

	switch classify(fv.Type()) {
	case ShapeScalar:
		if res.strategy == nil {
			return nil
		}
		if (fv.Kind() == reflect.Interface || fv.Kind() == reflect.Slice) && fv.IsNil() {
			return nil
		}
		ctx.setField(d, res.strategy, res.condition)
		if res.condition != nil && !res.condition.Applies(ctx) {
			return nil
		}
		if err := maskScalar(ctx, d, fv, res.strategy); err != nil {
			return cfg.fail(ctx, d.Name, err)
		}
		ctx.masked++
		return nil

	case ShapeArray:
		return cfg.walkElems(ctx, d, fv, res)

	case ShapeSlice:
		if fv.IsNil() {
			return nil
		}
		// Ordered collections come back as a fresh slice of the same type;
		// the source backing array is never touched
		fresh := reflect.MakeSlice(fv.Type(), fv.Len(), fv.Len())
		reflect.Copy(fresh, fv)
		if err := cfg.walkElems(ctx, d, fresh, res); err != nil {
			return err
		}
		fv.Set(fresh)
		return nil

	case ShapeMap:
		if res.strategy == nil || fv.IsNil() {
			return nil
		}
		ctx.setField(d, res.strategy, res.condition)
		if res.condition != nil && !res.condition.Applies(ctx) {
			return nil
		}
		return cfg.walkMap(ctx, d, fv, res.strategy)

	case ShapeComposite:
		return cfg.walk(ctx, fv)

	default:
		if res.strategy != nil || res.condition != nil {
			return cfg.fail(ctx, d.Name, newFieldError(ErrUnsupportedShape, d.Name,
				fmt.Errorf("no masking rule for %s", fv.Type())))
		}
		return nil
	}
}

// walkElems masks the elements of an array or freshly built slice in place.
// The field's condition is evaluated once for the whole field; composite
// elements are recursed into regardless of the field's strategy. Nested
// collections keep their values: only the owning field's scalar elements
// are masked.
func (cfg *config) walkElems(ctx *Context, d *FieldDescriptor, ev reflect.Value, res fieldResolution) error {
	strat := res.strategy
	if strat != nil && res.condition != nil {
		ctx.setField(d, strat, res.condition)
		if !res.condition.Applies(ctx) {
			strat = nil
		}
	}

	for i := 0; i < ev.Len(); i++ {
		elem, ok := deref(ev.Index(i))
		if !ok {
			continue
		}

		switch classify(elem.Type()) {
		case ShapeComposite:
			if err := cfg.walk(ctx, elem); err != nil {
				return err
			}
		case ShapeScalar:
			if strat == nil {
				continue
			}
			if (elem.Kind() == reflect.Interface || elem.Kind() == reflect.Slice) && elem.IsNil() {
				continue
			}
			ctx.setField(d, strat, res.condition)
			if err := maskScalar(ctx, d, elem, strat); err != nil {
				if ferr := cfg.fail(ctx, d.Name, err); ferr != nil {
					return ferr
				}
				continue
			}
			ctx.masked++
		}
	}
	return nil
}

// walkMap rebuilds a map field with masked values. Keys are preserved;
// scalar values are masked with the field's strategy, composite values are
// recursed into, anything else keeps its value.
func (cfg *config) walkMap(ctx *Context, d *FieldDescriptor, fv reflect.Value, strat Strategy) error {
	fresh := reflect.MakeMapWithSize(fv.Type(), fv.Len())

	iter := fv.MapRange()
	for iter.Next() {
		k, v := iter.Key(), iter.Value()

		elem, valid := deref(v)
		if !valid {
			fresh.SetMapIndex(k, v)
			continue
		}
		// Pointees reached through a map value are addressable; direct
		// values are not and need a writable copy
		viaPointer := v.Kind() == reflect.Pointer

		switch classify(elem.Type()) {
		case ShapeComposite:
			target := elem
			if !viaPointer {
				target = reflect.New(elem.Type()).Elem()
				target.Set(elem)
			}
			if err := cfg.walk(ctx, target); err != nil {
				return err
			}
			if viaPointer {
				fresh.SetMapIndex(k, v)
			} else {
				fresh.SetMapIndex(k, target)
			}

		case ShapeScalar:
			if (elem.Kind() == reflect.Interface || elem.Kind() == reflect.Slice) && elem.IsNil() {
				fresh.SetMapIndex(k, v)
				continue
			}
			ctx.setField(d, strat, nil)
			if viaPointer {
				if err := maskScalar(ctx, d, elem, strat); err != nil {
					if ferr := cfg.fail(ctx, d.Name, err); ferr != nil {
						return ferr
					}
				} else {
					ctx.masked++
				}
				fresh.SetMapIndex(k, v)
				continue
			}
			slot := reflect.New(fv.Type().Elem()).Elem()
			masked := strat.Mask(elem.Interface(), ctx)
			if err := writeValue(d, slot, masked); err != nil {
				if ferr := cfg.fail(ctx, d.Name, err); ferr != nil {
					return ferr
				}
				fresh.SetMapIndex(k, v)
				continue
			}
			fresh.SetMapIndex(k, slot)
			ctx.masked++

		default:
			fresh.SetMapIndex(k, v)
		}
	}

	fv.Set(fresh)
	return nil
}

// walkRoot dispatches the root object by shape. Roots carry no field
// metadata: composites are traversed, collection elements are traversed,
// scalars pass through unchanged.
func (cfg *config) walkRoot(ctx *Context, rv reflect.Value) error {
	root, ok := deref(rv)
	if !ok {
		return nil
	}

	switch classify(root.Type()) {
	case ShapeComposite:
		return cfg.walk(ctx, root)

	case ShapeArray, ShapeSlice:
		if root.Kind() == reflect.Slice && root.IsNil() {
			return nil
		}
		for i := 0; i < root.Len(); i++ {
			elem, ok := deref(root.Index(i))
			if !ok || classify(elem.Type()) != ShapeComposite {
				continue
			}
			if err := cfg.walk(ctx, elem); err != nil {
				return err
			}
		}
		return nil

	case ShapeMap:
		if root.IsNil() {
			return nil
		}
		iter := root.MapRange()
		for iter.Next() {
			k, v := iter.Key(), iter.Value()
			elem, valid := deref(v)
			if !valid || classify(elem.Type()) != ShapeComposite {
				continue
			}
			if v.Kind() == reflect.Pointer {
				if err := cfg.walk(ctx, elem); err != nil {
					return err
				}
				continue
			}
			tmp := reflect.New(elem.Type()).Elem()
			tmp.Set(elem)
			if err := cfg.walk(ctx, tmp); err != nil {
				return err
			}
			root.SetMapIndex(k, tmp)
		}
		return nil

	default:
		return nil
	}
}

// maskScalar replaces a scalar slot's value with the strategy output.
func maskScalar(ctx *Context, d *FieldDescriptor, fv reflect.Value, s Strategy) error {
	return writeValue(d, fv, s.Mask(fv.Interface(), ctx))
}

// writeValue writes a masked value into a settable slot, refusing values
// that do not fit the slot's type. nil writes the zero value.
func writeValue(d *FieldDescriptor, fv reflect.Value, masked any) error {
	if masked == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	mv := reflect.ValueOf(masked)
	switch {
	case mv.Type().AssignableTo(fv.Type()):
		fv.Set(mv)
	case mv.Kind() == fv.Kind() && mv.Type().ConvertibleTo(fv.Type()):
		// Same-kind named types, e.g. string into type Phone string
		fv.Set(mv.Convert(fv.Type()))
	default:
		return newFieldError(ErrFieldAccess, d.Name,
			fmt.Errorf("cannot write %s into %s", mv.Type(), fv.Type()))
	}
	return nil
}

// deref follows pointers to the pointee. ok is false when a nil pointer
// ends the chain.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}

// fail aborts the traversal with err, or in lenient mode records the field
// and lets the traversal continue past it.
func (cfg *config) fail(ctx *Context, field string, err error) error {
	if !cfg.lenient {
		return err
	}
	ctx.skipped++
	emitFieldSkipped(context.Background(), instanceTypeName(ctx), field, err)
	return nil
}

// instanceTypeName names the composite currently being visited.
func instanceTypeName(ctx *Context) string {
	if !ctx.instance.IsValid() {
		return ""
	}
	return ctx.instance.Type().String()
}
