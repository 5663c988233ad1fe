package veil

import (
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register tag keys with sentinel
	sentinel.Tag("mask")
	sentinel.Tag("json")
}

// FieldDescriptor describes one exported field of a composite type.
// Descriptor lists are built once per type, cached process-wide, and
// read-only after construction.
type FieldDescriptor struct {
	Name      string       // Go field name
	Index     []int        // reflect.Value.FieldByIndex access path
	Type      reflect.Type // declared field type
	OutName   string       // rendered name from the json tag; "-" omits the field
	Renamed   bool         // json tag carries an explicit name
	Anonymous bool         // embedded field, rendered inline unless renamed
	Policies  []Policy     // declarative metadata in declaration order
}

// buildDescriptors creates the descriptor list for a composite type by
// scanning struct tags. Programmatic policies registered via
// SetFieldPolicies replace tag metadata on their field.
func buildDescriptors(rt reflect.Type) ([]FieldDescriptor, error) {
	meta := scanComposite(rt)
	if meta == nil {
		return nil, nil
	}

	descs := make([]FieldDescriptor, 0, len(meta.Fields))
	for _, fm := range meta.Fields {
		sf := rt.FieldByIndex(fm.Index)

		policies, ok := overrideFor(rt, fm.Name)
		if !ok {
			var err error
			policies, err = parseMaskTag(fm.Name, fm.Tags["mask"])
			if err != nil {
				return nil, err
			}
		}

		outName, renamed := jsonName(fm.Name, fm.Tags["json"])
		descs = append(descs, FieldDescriptor{
			Name:      fm.Name,
			Index:     fm.Index,
			Type:      sf.Type,
			OutName:   outName,
			Renamed:   renamed,
			Anonymous: sf.Anonymous,
			Policies:  policies,
		})
	}

	return descs, nil
}

// scanComposite returns struct metadata for a composite type, preferring
// sentinel's registry and falling back to a raw reflection scan.
func scanComposite(rt reflect.Type) *sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok && describesType(rt, &spec) {
		return &spec
	}

	if rt.Kind() != reflect.Struct {
		return nil
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseVeilTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return &spec
}

// describesType reports whether registry metadata actually belongs to rt.
// The registry is keyed by type name, and same-named types from different
// scopes must not supply each other's field indexes.
func describesType(rt reflect.Type, spec *sentinel.Metadata) bool {
	for i := range spec.Fields {
		fm := &spec.Fields[i]
		sf, ok := fieldAt(rt, fm.Index)
		if !ok || sf.Name != fm.Name || sf.Type != fm.ReflectType {
			return false
		}
	}
	return true
}

// fieldAt resolves an index path without panicking on paths that belong to
// another type.
func fieldAt(rt reflect.Type, index []int) (reflect.StructField, bool) {
	var sf reflect.StructField
	cur := rt
	for _, i := range index {
		if cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct || i < 0 || i >= cur.NumField() {
			return sf, false
		}
		sf = cur.Field(i)
		cur = sf.Type
	}
	return sf, true
}

// parseVeilTags extracts mask and json tags from a struct tag.
func parseVeilTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{"mask", "json"} {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// jsonName extracts the rendered field name from a json tag. renamed
// reports whether the tag named the field explicitly.
func jsonName(fieldName, tag string) (name string, renamed bool) {
	if tag == "" {
		return fieldName, false
	}
	name = tag
	if i := strings.Index(tag, ","); i >= 0 {
		name = tag[:i]
	}
	if name == "" {
		return fieldName, false
	}
	return name, true
}
