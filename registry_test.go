package veil_test

import (
	"errors"
	"testing"

	"github.com/veilkit/veil"
	"github.com/veilkit/veil/json"
)

type RegistryUser struct {
	Phone string `json:"phone" mask:"phone"`
	Email string `json:"email" mask:"email"`
}

func (u RegistryUser) Clone() RegistryUser { return u }

func TestSetFieldPolicies_ReplacesTag(t *testing.T) {
	t.Cleanup(veil.Reset)

	// Prime the descriptor cache with the tag-derived metadata first.
	src := RegistryUser{Phone: "13812345678", Email: "alice@example.com"}
	masked, err := veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if masked.Phone != "138****5678" {
		t.Fatalf("Mask() Phone = %q, want tag policy applied", masked.Phone)
	}

	if err := veil.SetFieldPolicies[RegistryUser]("Phone",
		veil.Policy{Strategy: "hash", BuiltIn: true}); err != nil {
		t.Fatalf("SetFieldPolicies() error: %v", err)
	}

	masked, err = veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error after override: %v", err)
	}
	if len(masked.Phone) != 16 || masked.Phone == "138****5678" {
		t.Errorf("Mask() Phone = %q, want the override's fingerprint", masked.Phone)
	}
	if masked.Email != "a***@example.com" {
		t.Errorf("Mask() Email = %q, untouched fields keep their tag policy", masked.Email)
	}
}

func TestSetFieldPolicies_ClearsField(t *testing.T) {
	t.Cleanup(veil.Reset)

	// An override with no policies replaces the tag with nothing.
	if err := veil.SetFieldPolicies[RegistryUser]("Phone"); err != nil {
		t.Fatalf("SetFieldPolicies() error: %v", err)
	}

	src := RegistryUser{Phone: "13812345678", Email: "alice@example.com"}
	masked, err := veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if masked.Phone != "13812345678" {
		t.Errorf("Mask() Phone = %q, want unmasked", masked.Phone)
	}
	if masked.Email != "a***@example.com" {
		t.Errorf("Mask() Email = %q, want masked", masked.Email)
	}
}

func TestSetFieldPolicies_PointerType(t *testing.T) {
	t.Cleanup(veil.Reset)

	if err := veil.SetFieldPolicies[*RegistryUser]("Phone",
		veil.Policy{Strategy: "password", BuiltIn: true}); err != nil {
		t.Fatalf("SetFieldPolicies() with pointer type error: %v", err)
	}

	src := RegistryUser{Phone: "13812345678"}
	masked, err := veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if masked.Phone != "" {
		t.Errorf("Mask() Phone = %q, want the pointer-registered policy applied", masked.Phone)
	}
}

func TestSetFieldPolicies_UnknownField(t *testing.T) {
	err := veil.SetFieldPolicies[RegistryUser]("Missing",
		veil.Policy{Strategy: "phone", BuiltIn: true})
	if !errors.Is(err, veil.ErrUnknownField) {
		t.Errorf("SetFieldPolicies() error = %v, want ErrUnknownField", err)
	}
}

func TestSetFieldPolicies_NotComposite(t *testing.T) {
	err := veil.SetFieldPolicies[int]("Field",
		veil.Policy{Strategy: "phone", BuiltIn: true})
	if !errors.Is(err, veil.ErrUnknownField) {
		t.Errorf("SetFieldPolicies() error = %v, want ErrUnknownField", err)
	}
}

func TestReset_RestoresBuiltins(t *testing.T) {
	// Rebind the builtin phone policy name, then restore it.
	veil.RegisterPolicy("phone", veil.Policy{Strategy: "hash", BuiltIn: true})

	src := RegistryUser{Phone: "13812345678", Email: "alice@example.com"}
	masked, err := veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if masked.Phone == "138****5678" {
		t.Errorf("Mask() Phone = %q, want the rebound policy applied", masked.Phone)
	}

	veil.Reset()

	masked, err = veil.Mask(t.Context(), &src)
	if err != nil {
		t.Fatalf("Mask() error after Reset: %v", err)
	}
	if masked.Phone != "138****5678" {
		t.Errorf("Mask() Phone = %q, want the builtin policy back", masked.Phone)
	}
}

func TestMask_SubpackageCodec(t *testing.T) {
	src := RegistryUser{Phone: "13812345678", Email: "alice@example.com"}

	masked, err := veil.Mask(t.Context(), &src, veil.WithCodec(json.New()))
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if masked.Phone != "138****5678" || masked.Email != "a***@example.com" {
		t.Errorf("Mask() = %+v, want both fields masked", masked)
	}
	if src.Phone != "13812345678" {
		t.Errorf("Mask() mutated the source: %+v", src)
	}
}
