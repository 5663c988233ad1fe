package bson

import (
	"bytes"
	"context"
	"testing"

	"github.com/veilkit/veil"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/bson" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/bson")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type record struct {
		Owner string
		Count int
	}

	original := record{Owner: "alice", Count: 42}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored record
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored != original {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
}

func TestMarshalNil(t *testing.T) {
	c := New()

	// BSON has no top-level null document
	if _, err := c.Marshal(nil); err == nil {
		t.Error("Marshal(nil) should return error")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct{ A int }
	err := c.Unmarshal([]byte("invalid bson"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

func TestRenderMasked(t *testing.T) {
	type account struct {
		Owner string `json:"owner"`
		Phone string `json:"phone" mask:"phone"`
	}

	obj := account{Owner: "alice", Phone: "13812345678"}

	data, err := veil.Render(context.Background(), &obj, veil.WithCodec(New()))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	// Strings embed verbatim in BSON documents
	if !bytes.Contains(data, []byte("138****5678")) {
		t.Errorf("Render() = %x, want masked phone", data)
	}
	if bytes.Contains(data, []byte("13812345678")) {
		t.Errorf("Render() = %x, leaked plaintext phone", data)
	}
}
