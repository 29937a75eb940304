package security

import "testing"

func TestNewTokenIsRandom(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	if len(a) < 40 {
		t.Fatalf("token too short: %q", a)
	}
}

func TestVerifyToken(t *testing.T) {
	if !VerifyToken("abc", "abc") {
		t.Fatalf("expected matching tokens to verify")
	}
	if VerifyToken("abc", "abd") {
		t.Fatalf("expected different tokens to fail")
	}
	if VerifyToken("", "") {
		t.Fatalf("expected empty tokens to fail")
	}
}

