package veil

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// ValueInterceptor rewrites a leaf value during rendering. d is the
// descriptor of the field the value sits under, never nil; owner is the
// enclosing composite instance, so an interceptor can make decisions from
// sibling fields. The returned value replaces the original in the output.
type ValueInterceptor func(d *FieldDescriptor, owner any, value any) any

// Renderer turns an object graph into serialized bytes, passing every leaf
// value through intercept on the way out. The source object is read, never
// written.
type Renderer interface {
	Render(v any, intercept ValueInterceptor) ([]byte, error)
}

// codecRenderer renders through an intermediate tree of maps and slices,
// then hands the tree to a Codec. Field names follow json tags.
type codecRenderer struct {
	codec Codec
}

// CodecRenderer returns a Renderer that serializes with the given codec.
func CodecRenderer(codec Codec) Renderer {
	return &codecRenderer{codec: codec}
}

func (r *codecRenderer) Render(v any, intercept ValueInterceptor) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return r.marshal(nil)
	}
	tree, include, err := r.renderValue(rv, nil, reflect.Value{}, intercept)
	if err != nil {
		return nil, err
	}
	if !include {
		tree = nil
	}
	return r.marshal(tree)
}

func (r *codecRenderer) marshal(tree any) ([]byte, error) {
	data, err := r.codec.Marshal(tree)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// renderValue converts one value into its output form. d is non-nil when
// the value sits directly under a described field and may be intercepted;
// nested collections below the first level render without interception.
// include is false for values that have no output form at all.
func (r *codecRenderer) renderValue(rv reflect.Value, d *FieldDescriptor, owner reflect.Value, intercept ValueInterceptor) (any, bool, error) {
	rv, ok := deref(rv)
	if !ok {
		return nil, true, nil
	}

	switch classify(rv.Type()) {
	case ShapeScalar:
		if (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Slice) && rv.IsNil() {
			return nil, true, nil
		}
		return r.leaf(d, owner, rv.Interface(), intercept), true, nil

	case ShapeComposite:
		if isLeafComposite(rv.Type()) {
			// Types with their own marshaling, time.Time and friends,
			// serialize as a single value
			return r.leaf(d, owner, rv.Interface(), intercept), true, nil
		}
		m, err := r.renderComposite(rv, intercept)
		return m, true, err

	case ShapeSlice, ShapeArray:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true, nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := r.renderElem(rv.Index(i), d, owner, intercept)
			if err != nil {
				return nil, false, err
			}
			out[i] = v
		}
		return out, true, nil

	case ShapeMap:
		if rv.IsNil() {
			return nil, true, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			v, err := r.renderElem(iter.Value(), d, owner, intercept)
			if err != nil {
				return nil, false, err
			}
			out[keyString(iter.Key())] = v
		}
		return out, true, nil

	default:
		return nil, false, nil
	}
}

// renderElem converts a collection element. Scalar elements inherit the
// owning field's descriptor so the interceptor sees them; everything else
// renders on its own terms.
func (r *codecRenderer) renderElem(ev reflect.Value, d *FieldDescriptor, owner reflect.Value, intercept ValueInterceptor) (any, error) {
	elem, ok := deref(ev)
	if !ok {
		return nil, nil
	}
	if classify(elem.Type()) == ShapeScalar {
		if (elem.Kind() == reflect.Interface || elem.Kind() == reflect.Slice) && elem.IsNil() {
			return nil, nil
		}
		return r.leaf(d, owner, elem.Interface(), intercept), nil
	}
	v, _, err := r.renderValue(elem, nil, reflect.Value{}, intercept)
	return v, err
}

// renderComposite builds the output map for a struct. Fields named "-" are
// omitted, embedded composites without a rename are inlined, and colliding
// inlined names lose to the outer field.
func (r *codecRenderer) renderComposite(rv reflect.Value, intercept ValueInterceptor) (map[string]any, error) {
	descs, err := descriptorsFor(rv.Type())
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(descs))
	for i := range descs {
		d := &descs[i]
		if d.OutName == "-" {
			continue
		}
		fv := rv.FieldByIndex(d.Index)

		if d.Anonymous && !d.Renamed {
			if ev, ok := deref(fv); ok && classify(ev.Type()) == ShapeComposite && !isLeafComposite(ev.Type()) {
				inner, err := r.renderComposite(ev, intercept)
				if err != nil {
					return nil, err
				}
				for k, v := range inner {
					if _, exists := out[k]; !exists {
						out[k] = v
					}
				}
				continue
			}
		}

		val, include, err := r.renderValue(fv, d, rv, intercept)
		if err != nil {
			return nil, err
		}
		if !include {
			continue
		}
		out[d.OutName] = val
	}
	return out, nil
}

func (r *codecRenderer) leaf(d *FieldDescriptor, owner reflect.Value, v any, intercept ValueInterceptor) any {
	if intercept == nil || d == nil {
		return v
	}
	var ownerAny any
	if owner.IsValid() {
		ownerAny = owner.Interface()
	}
	return intercept(d, ownerAny, v)
}

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// isLeafComposite reports whether a struct type serializes itself.
func isLeafComposite(rt reflect.Type) bool {
	return rt.Implements(textMarshalerType) || rt.Implements(jsonMarshalerType)
}

// keyString renders a map key for the output tree.
func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	default:
		return fmt.Sprint(k.Interface())
	}
}
