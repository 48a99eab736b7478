package auth

import (
	"testing"
	"time"
)

func TestAuthCode_CurrentStepVerifies(t *testing.T) {
	a := NewAuthCode("salt")
	now := time.Unix(1700000000, 0).UTC()
	a.clock = func() time.Time { return now }

	code := a.Generate()
	if code == "" {
		t.Fatalf("expected code")
	}
	if !a.Verify(code) {
		t.Fatalf("current-step code must verify")
	}
}

func TestAuthCode_AdjacentStepsVerify(t *testing.T) {
	a := NewAuthCode("salt")
	now := time.Unix(1700000000, 0).UTC()

	a.clock = func() time.Time { return now }
	code := a.Generate()

	// One step earlier and one step later both accept the code.
	a.clock = func() time.Time { return now.Add(-30 * time.Second) }
	if !a.Verify(code) {
		t.Fatalf("previous-step verifier must accept the code")
	}
	a.clock = func() time.Time { return now.Add(30 * time.Second) }
	if !a.Verify(code) {
		t.Fatalf("next-step verifier must accept the code")
	}
}

func TestAuthCode_DistantStepRejected(t *testing.T) {
	a := NewAuthCode("salt")
	now := time.Unix(1700000000, 0).UTC()

	a.clock = func() time.Time { return now }
	code := a.Generate()

	a.clock = func() time.Time { return now.Add(2 * time.Minute) }
	if a.Verify(code) {
		t.Fatalf("stale code must be rejected")
	}
}

func TestAuthCode_WrongCodeAndWrongSaltRejected(t *testing.T) {
	a := NewAuthCode("salt")
	if a.Verify("deadbeef") {
		t.Fatalf("arbitrary code must be rejected")
	}

	b := NewAuthCode("other-salt")
	now := time.Unix(1700000000, 0).UTC()
	a.clock = func() time.Time { return now }
	b.clock = func() time.Time { return now }
	if b.Verify(a.Generate()) {
		t.Fatalf("code from a different salt must be rejected")
	}
}
