package integration

import (
	"context"
	"testing"

	"github.com/veilkit/veil"
	"github.com/veilkit/veil/bson"
	"github.com/veilkit/veil/json"
	"github.com/veilkit/veil/msgpack"
	veiltest "github.com/veilkit/veil/testing"
	"github.com/veilkit/veil/yaml"
)

func TestRender_JSON(t *testing.T) {
	testRender(t, json.New())
}

func TestRender_YAML(t *testing.T) {
	testRender(t, yaml.New())
}

func TestRender_MessagePack(t *testing.T) {
	testRender(t, msgpack.New())
}

func TestRender_BSON(t *testing.T) {
	testRender(t, bson.New())
}

// testRender serializes a user through the codec and decodes the document
// to verify every policy fired in the output while the source kept its
// values.
func testRender(t *testing.T, c veil.Codec) {
	t.Helper()

	original := veiltest.SanitizedUser{
		ID:       "123",
		Name:     "Alice Smith",
		Email:    "alice@example.com",
		Phone:    "13812345678",
		Password: "supersecret",
		SSN:      "123-45-6789",
		Note:     "internal note",
	}

	data, err := veil.Render(context.Background(), &original, veil.WithCodec(c))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	var rendered map[string]string
	if err := c.Unmarshal(data, &rendered); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if rendered["email"] != "a***@example.com" {
		t.Errorf("email = %q, want %q", rendered["email"], "a***@example.com")
	}
	if rendered["phone"] != "138****5678" {
		t.Errorf("phone = %q, want %q", rendered["phone"], "138****5678")
	}
	if rendered["ssn"] != "***-**-6789" {
		t.Errorf("ssn = %q, want %q", rendered["ssn"], "***-**-6789")
	}
	if rendered["name"] != "A**** S****" {
		t.Errorf("name = %q, want %q", rendered["name"], "A**** S****")
	}
	if rendered["password"] != "" {
		t.Errorf("password = %q, want empty", rendered["password"])
	}
	if rendered["id"] != "123" || rendered["note"] != "internal note" {
		t.Errorf("untagged fields changed: id=%q note=%q", rendered["id"], rendered["note"])
	}

	if original.Email != "alice@example.com" || original.Password != "supersecret" {
		t.Errorf("Render mutated the source: %+v", original)
	}
}

func TestMask_JSONTransport(t *testing.T) {
	testMaskedCopy(t, json.New())
}

func TestMask_YAMLTransport(t *testing.T) {
	testMaskedCopy(t, yaml.New())
}

func TestMask_MessagePackTransport(t *testing.T) {
	testMaskedCopy(t, msgpack.New())
}

func TestMask_BSONTransport(t *testing.T) {
	testMaskedCopy(t, bson.New())
}

// maskSubject has no Clone method, forcing the copy through the codec.
type maskSubject struct {
	ID    string `json:"id"`
	Email string `json:"email" mask:"email"`
	Phone string `json:"phone" mask:"phone"`
}

// testMaskedCopy deep copies through the codec and verifies the copy is
// masked while the source keeps its values.
func testMaskedCopy(t *testing.T, c veil.Codec) {
	t.Helper()

	original := maskSubject{
		ID:    "123",
		Email: "alice@example.com",
		Phone: "13812345678",
	}

	masked, err := veil.Mask(context.Background(), &original, veil.WithCodec(c))
	if err != nil {
		t.Fatalf("Mask error: %v", err)
	}

	if masked.Email != "a***@example.com" {
		t.Errorf("Email = %q, want %q", masked.Email, "a***@example.com")
	}
	if masked.Phone != "138****5678" {
		t.Errorf("Phone = %q, want %q", masked.Phone, "138****5678")
	}
	if masked.ID != "123" {
		t.Errorf("ID = %q, want untouched", masked.ID)
	}

	if original.Email != "alice@example.com" || original.Phone != "13812345678" {
		t.Errorf("Mask mutated the source: %+v", original)
	}
}

func TestTokenization_RoundTrip(t *testing.T) {
	t.Cleanup(veil.Reset)

	strat := veiltest.TestTokenStrategy(t)
	veil.RegisterStrategy("token", func() (veil.Strategy, error) { return strat, nil })

	type payment struct {
		Card string `json:"card" mask:"token"`
	}

	original := payment{Card: "4111111111111111"}
	masked, err := veil.Mask(context.Background(), &original)
	if err != nil {
		t.Fatalf("Mask error: %v", err)
	}

	if masked.Card == original.Card {
		t.Fatal("Card should be tokenized")
	}

	recovered, err := strat.Detokenize(masked.Card)
	if err != nil {
		t.Fatalf("Detokenize error: %v", err)
	}
	if recovered != original.Card {
		t.Errorf("Detokenize = %q, want %q", recovered, original.Card)
	}
}
