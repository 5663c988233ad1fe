package veil

import "reflect"

// Shape buckets a type by how the traversal engine handles it.
type Shape int

const (
	// ShapeScalar is a leaf value masked as a unit: booleans, numbers,
	// strings, []byte blobs, and interface values.
	ShapeScalar Shape = iota

	// ShapeArray is a fixed-length array, masked element by element in place.
	ShapeArray

	// ShapeSlice is an ordered collection, rebuilt as a fresh slice of the
	// same type during masking.
	ShapeSlice

	// ShapeMap is a keyed collection, rebuilt only when a strategy applies.
	ShapeMap

	// ShapeComposite is a struct whose fields are traversed recursively.
	ShapeComposite

	// ShapeOpaque has no masking rule: channels, functions, unsafe pointers.
	ShapeOpaque
)

// classify buckets rt for traversal dispatch. Pointer types classify as
// their element type; the walker dereferences before acting on the value.
// Interface types classify as scalar: the dynamic value is masked or passed
// through whole, never traversed.
func classify(rt reflect.Type) Shape {
	switch rt.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Interface:
		return ShapeScalar
	case reflect.Slice:
		// []byte is a blob, not a collection of maskable elements
		if rt.Elem().Kind() == reflect.Uint8 {
			return ShapeScalar
		}
		return ShapeSlice
	case reflect.Array:
		return ShapeArray
	case reflect.Map:
		return ShapeMap
	case reflect.Struct:
		return ShapeComposite
	case reflect.Pointer:
		return classify(rt.Elem())
	default:
		return ShapeOpaque
	}
}
