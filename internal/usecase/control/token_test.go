package control

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

func TestMakeUnlockTokenShape(t *testing.T) {
	token := MakeUnlockToken("dev-secret", "bike-1", "user-1", 1700000000)

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		t.Fatalf("expected ts.sig, got %q", token)
	}
	if parts[0] != "1700000000" {
		t.Fatalf("expected unix ts prefix, got %q", parts[0])
	}
	if len(parts[1]) != 16 {
		t.Fatalf("expected 16 hex chars of signature, got %d", len(parts[1]))
	}

	mac := hmac.New(sha256.New, []byte("dev-secret"))
	mac.Write([]byte(fmt.Sprintf("%s:%s:%d", "bike-1", "user-1", int64(1700000000))))
	want := hex.EncodeToString(mac.Sum(nil))[:16]
	if parts[1] != want {
		t.Fatalf("signature mismatch: got %q want %q", parts[1], want)
	}
}

func TestMakeUnlockTokenVaries(t *testing.T) {
	a := MakeUnlockToken("s", "bike-1", "user-1", 100)
	b := MakeUnlockToken("s", "bike-2", "user-1", 100)
	c := MakeUnlockToken("other", "bike-1", "user-1", 100)

	if a == b || a == c {
		t.Fatal("token must depend on bike id and secret")
	}
}
