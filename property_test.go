package veil

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestMaskInvariants uses property-based testing to verify traversal
// invariants. These properties should hold for any input value.
func TestMaskInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	type propUser struct {
		Name  string   `json:"name" mask:"name"`
		Phone string   `json:"phone" mask:"phone"`
		Tags  []string `json:"tags" mask:"phone"`
	}

	// Property 1: the input object survives masking untouched
	properties.Property("masking never mutates the source", prop.ForAll(
		func(name, phone string, tags []string) bool {
			before := append([]string(nil), tags...)
			src := propUser{Name: name, Phone: phone, Tags: tags}

			if _, err := Mask(context.Background(), &src); err != nil {
				return false
			}

			if src.Name != name || src.Phone != phone {
				return false
			}
			if len(src.Tags) != len(before) {
				return false
			}
			for i := range before {
				if src.Tags[i] != before[i] {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	// Property 2: slice elements keep their count and order, each one
	// carrying the strategy output for its original value
	properties.Property("slice elements mask in order", prop.ForAll(
		func(tags []string) bool {
			src := propUser{Tags: append([]string(nil), tags...)}

			masked, err := Mask(context.Background(), &src)
			if err != nil {
				return false
			}

			if len(masked.Tags) != len(tags) {
				return false
			}
			phone := PhoneStrategy()
			for i, tag := range tags {
				want, _ := phone.Mask(tag, nil).(string)
				if masked.Tags[i] != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	// Property 3: the same input always produces the same masked output
	properties.Property("masking is deterministic", prop.ForAll(
		func(name, phone string, tags []string) bool {
			a := propUser{Name: name, Phone: phone, Tags: append([]string(nil), tags...)}
			b := propUser{Name: name, Phone: phone, Tags: append([]string(nil), tags...)}

			ma, err1 := Mask(context.Background(), &a)
			mb, err2 := Mask(context.Background(), &b)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(ma, mb)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	// Property 4: the masked copy shares no slice backing with the source
	properties.Property("masked copy is isolated from the source", prop.ForAll(
		func(tags []string) bool {
			if len(tags) == 0 {
				return true
			}
			src := propUser{Tags: tags}

			masked, err := Mask(context.Background(), &src)
			if err != nil {
				return false
			}

			masked.Tags[0] = tags[0] + "!"
			return src.Tags[0] == tags[0]
		},
		gen.SliceOf(gen.AlphaString()),
	))

	// Property 5: the phone mask keeps the edges and stars the middle
	properties.Property("phone mask hides the middle", prop.ForAll(
		func(s string) bool {
			masked, ok := PhoneStrategy().Mask(s, nil).(string)
			if !ok {
				return false
			}

			runes := []rune(s)
			got := []rune(masked)
			if len(got) != len(runes) {
				return false
			}
			if len(runes) < 8 {
				for _, r := range got {
					if r != '*' {
						return false
					}
				}
				return true
			}
			for i := 3; i < len(runes)-4; i++ {
				if got[i] != '*' {
					return false
				}
			}
			return string(got[:3]) == string(runes[:3]) &&
				string(got[len(got)-4:]) == string(runes[len(runes)-4:])
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestRenderInvariants verifies serialization-side invariants.
func TestRenderInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	type propRecord struct {
		Name  string `json:"name" mask:"name"`
		Phone string `json:"phone" mask:"phone"`
	}

	// Property 1: rendering reads the object, never writes it
	properties.Property("rendering never mutates the source", prop.ForAll(
		func(name, phone string) bool {
			src := propRecord{Name: name, Phone: phone}

			if _, err := Render(context.Background(), &src); err != nil {
				return false
			}
			return src.Name == name && src.Phone == phone
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	// Property 2: the rendered document carries the strategy output
	properties.Property("rendered output carries masked values", prop.ForAll(
		func(phone string) bool {
			src := propRecord{Phone: phone}

			data, err := Render(context.Background(), &src)
			if err != nil {
				return false
			}

			var out map[string]string
			if err := json.Unmarshal(data, &out); err != nil {
				return false
			}
			want, _ := PhoneStrategy().Mask(phone, nil).(string)
			return out["phone"] == want
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
