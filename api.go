// Package veil masks sensitive fields on their way out of a process.
//
// Masking is declared once, on the type, and applied everywhere the type
// crosses a boundary. A mask tag names the policy for each sensitive
// field. Mask produces a masked deep copy, Render produces masked bytes,
// and the input object is never modified by either.
//
// # Tag Syntax
//
// Field behavior is declared via the mask struct tag:
//
//	mask:"-"                                  - never mask, never recurse
//	mask:"phone"                              - apply the named policy
//	mask:"strategy=phone"                     - explicit strategy reference
//	mask:"strategy=phone,condition=external"  - strategy gated by a condition
//	mask:"phone,condition=external"           - independent references
//
// A skip element beats everything else in the tag. An explicit strategy=
// element beats named policy references. Otherwise references are scanned
// in declaration order and the first strategy and first condition found
// win independently.
//
// # Basic Usage
//
//	type User struct {
//	    ID       string `json:"id"`
//	    Name     string `json:"name" mask:"name"`
//	    Phone    string `json:"phone" mask:"phone"`
//	    Email    string `json:"email" mask:"email"`
//	    Password string `json:"password" mask:"password"`
//	    Internal string `json:"-" mask:"-"`
//	}
//
//	// Masked deep copy; user is untouched
//	masked, _ := veil.Mask(ctx, &user)
//
//	// Masked serialization; user is untouched
//	data, _ := veil.Render(ctx, &user)
//
// Mask copies through the configured codec unless the type implements
// Cloner. Render never copies at all: values are rewritten on their way
// into the encoder.
//
// # Built-in Policies
//
// Content-aware strategies are registered under these policy names:
//
//   - phone: 13812345678 → 138****5678
//   - email: alice@example.com → a***@example.com
//   - ssn: 123-45-6789 → ***-**-6789
//   - card: 4111111111111111 → ************1111
//   - ip: 192.168.1.100 → 192.168.xxx.xxx
//   - uuid: 550e8400-e29b-... → 550e8400-****-****-****-************
//   - iban: GB82WEST12345698765432 → GB82**************5432
//   - name: John Smith → J*** S****
//   - password: any value → empty string
//   - hash: deterministic BLAKE2b digest, joinable across records
//
// # Custom Strategies and Conditions
//
// Register a strategy factory and refer to it from tags:
//
//	veil.RegisterStrategy("token", func() (veil.Strategy, error) {
//	    return veil.Token(key)
//	})
//
//	type Payment struct {
//	    Card string `mask:"token"`
//	}
//
// Conditions gate a strategy per object. A condition reads sibling fields
// through the run context:
//
//	veil.RegisterCondition("external", func() (veil.Condition, error) {
//	    return externalOnly{}, nil
//	})
//
//	type Account struct {
//	    Audience string `mask:"-"`
//	    Number   string `mask:"strategy=card,condition=external"`
//	}
//
// # Programmatic Policies
//
// Policies can be attached without touching type definitions, replacing
// whatever the field's tag declares:
//
//	veil.SetFieldPolicies[User]("Phone", veil.Policy{Strategy: "phone", BuiltIn: true})
//
// # Self Masking
//
// Types can bypass reflection by implementing SelfMasker. Mask calls
// MaskFields on the private copy instead of walking fields. Render does
// not call MaskFields; it rewrites values field by field.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
package veil

import (
	"context"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// config collects the options applied to one facade call.
type config struct {
	codec    Codec
	copier   Copier
	renderer Renderer
	lenient  bool
}

// Option adjusts a single Mask or Render call.
type Option func(*config)

// WithCodec selects the codec used for deep copying and rendering.
// Defaults to JSON.
func WithCodec(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithCopier replaces the deep copy transport used by Mask.
func WithCopier(c Copier) Option {
	return func(cfg *config) { cfg.copier = c }
}

// WithRenderer replaces the serializer used by Render.
func WithRenderer(r Renderer) Option {
	return func(cfg *config) { cfg.renderer = r }
}

// Lenient keeps going past fields whose policy fails to resolve or apply,
// leaving them unmasked and emitting a field.skipped signal for each.
// Malformed tags still abort. The default is to fail on the first field.
func Lenient() Option {
	return func(cfg *config) { cfg.lenient = true }
}

func newConfig(opts []Option) *config {
	cfg := &config{codec: defaultCodec{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.copier == nil {
		cfg.copier = CodecCopier(cfg.codec)
	}
	if cfg.renderer == nil {
		cfg.renderer = CodecRenderer(cfg.codec)
	}
	return cfg
}

// Mask returns a masked deep copy of obj. The input and everything
// reachable from it keep their values; all masking happens on the copy.
//
// The copy comes from Clone when T implements Cloner, otherwise from a
// round trip through the configured Copier. Unexported fields do not
// survive a codec round trip.
func Mask[T any](ctx context.Context, obj *T, opts ...Option) (*T, error) {
	if obj == nil {
		return nil, ErrNilObject
	}

	cfg := newConfig(opts)

	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Struct {
		sentinel.Scan[T]()
	}

	start := time.Now()
	emitMaskStart(ctx, rt.String())

	mctx := newContext()
	var retErr error
	defer func() {
		emitMaskComplete(ctx, rt.String(), time.Since(start), mctx.masked, mctx.skipped, retErr)
	}()

	out, err := copyOf(cfg, obj)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	if err := cfg.walkRoot(mctx, reflect.ValueOf(out).Elem()); err != nil {
		retErr = err
		return nil, retErr
	}

	return out, nil
}

// Render serializes obj with every sensitive field masked in the output.
// The object itself is read, never written. A nil obj renders as the
// codec's null value.
func Render(ctx context.Context, obj any, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)

	typeName := "<nil>"
	if rt := reflect.TypeOf(obj); rt != nil {
		typeName = rt.String()
	}

	start := time.Now()
	emitRenderStart(ctx, cfg.codec.ContentType(), typeName)

	rctx := newContext()
	var retErr error
	var retData []byte
	defer func() {
		emitRenderComplete(ctx, cfg.codec.ContentType(), typeName,
			len(retData), time.Since(start), rctx.masked, rctx.skipped, retErr)
	}()

	if obj == nil {
		retData, retErr = cfg.codec.Marshal(nil)
		return retData, retErr
	}

	// The renderer's interceptor cannot return an error; the first failure
	// is captured here and surfaced after the render returns
	var walkErr error
	intercept := func(d *FieldDescriptor, owner any, value any) any {
		if walkErr != nil {
			return value
		}
		masked, err := cfg.interceptValue(rctx, d, owner, value)
		if err != nil {
			walkErr = err
			return value
		}
		return masked
	}

	data, err := cfg.renderer.Render(obj, intercept)
	if walkErr != nil {
		retErr = walkErr
		return nil, retErr
	}
	if err != nil {
		retErr = err
		return nil, retErr
	}

	retData = data
	return retData, nil
}

// copyOf produces the private copy Mask operates on.
func copyOf[T any](cfg *config, obj *T) (*T, error) {
	if c, ok := any(*obj).(Cloner[T]); ok {
		clone := c.Clone()
		return &clone, nil
	}
	dst := new(T)
	if err := cfg.copier.Copy(obj, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// interceptValue applies one field's policy to an outgoing leaf value.
func (cfg *config) interceptValue(ctx *Context, d *FieldDescriptor, owner any, value any) (any, error) {
	res, err := resolveField(d)
	if err != nil {
		if ferr := cfg.fail(ctx, d.Name, err); ferr != nil {
			return nil, ferr
		}
		return value, nil
	}
	if res.skip {
		ctx.skipped++
		return value, nil
	}
	if res.strategy == nil || value == nil {
		return value, nil
	}

	ov := reflect.ValueOf(owner)
	var fields []FieldDescriptor
	if ov.IsValid() && ov.Kind() == reflect.Struct {
		// Cached; build errors have already surfaced during rendering
		fields, _ = descriptorsFor(ov.Type())
	}
	prevFields, prevInstance := ctx.enter(fields, ov)
	defer ctx.restore(prevFields, prevInstance)
	ctx.setField(d, res.strategy, res.condition)

	if res.condition != nil && !res.condition.Applies(ctx) {
		return value, nil
	}

	masked := res.strategy.Mask(value, ctx)
	ctx.masked++
	return masked, nil
}
