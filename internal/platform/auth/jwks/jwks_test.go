package jwks

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
)

func TestMarshalParse(t *testing.T) {
	t.Parallel()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	b, err := Marshal(Key{Kid: "kid-1", Public: &priv.PublicKey})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	keys, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := keys["kid-1"]
	if got == nil || got.E != priv.PublicKey.E || got.N.Cmp(priv.PublicKey.N) != 0 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestParse_SkipsUnusableKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"keys":[{"kty":"EC","kid":"ec-1","n":"x","e":"y"},{"kty":"RSA","kid":""}]}`))
	if !errors.Is(err, ErrNoUsableKeys) {
		t.Fatalf("Parse err=%v, want %v", err, ErrNoUsableKeys)
	}
}
