package benchmarks

import (
	"context"
	"testing"

	"github.com/veilkit/veil"
	"github.com/veilkit/veil/json"
	"github.com/veilkit/veil/msgpack"
	veiltest "github.com/veilkit/veil/testing"
)

func BenchmarkMask_NoPolicies(b *testing.B) {
	user := &veiltest.SimpleUser{ID: "123", Name: "Alice"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = veil.Mask(context.Background(), user)
	}
}

func BenchmarkMask_WithPolicies(b *testing.B) {
	user := &veiltest.SanitizedUser{
		ID:       "123",
		Name:     "Alice Smith",
		Email:    "alice@example.com",
		Phone:    "13812345678",
		Password: "secret",
		SSN:      "123-45-6789",
		Note:     "internal note",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = veil.Mask(context.Background(), user)
	}
}

func BenchmarkRender_JSON(b *testing.B) {
	jsonCodec := json.New()
	user := &veiltest.SanitizedUser{
		ID:       "123",
		Name:     "Alice Smith",
		Email:    "alice@example.com",
		Phone:    "13812345678",
		Password: "secret",
		SSN:      "123-45-6789",
		Note:     "internal note",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = veil.Render(context.Background(), user, veil.WithCodec(jsonCodec))
	}
}

func BenchmarkRender_MessagePack(b *testing.B) {
	msgpackCodec := msgpack.New()
	user := &veiltest.SanitizedUser{
		ID:       "123",
		Name:     "Alice Smith",
		Email:    "alice@example.com",
		Phone:    "13812345678",
		Password: "secret",
		SSN:      "123-45-6789",
		Note:     "internal note",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = veil.Render(context.Background(), user, veil.WithCodec(msgpackCodec))
	}
}

func BenchmarkTokenStrategy_Mask(b *testing.B) {
	strat := veiltest.TestTokenStrategy(b)
	value := "4111111111111111"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = strat.Mask(value, nil)
	}
}

func BenchmarkHashStrategy_Mask(b *testing.B) {
	strat := veil.HashStrategy()
	value := "this is a test value for fingerprint benchmarking"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = strat.Mask(value, nil)
	}
}
