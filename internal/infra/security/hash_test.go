package security

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.Contains(hash, ":") {
		t.Fatalf("hash %q missing salt separator", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("expected mismatched password to fail")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if a == b {
		t.Error("two hashes of the same password should not be equal")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "nosalt", "a:b:c", "!!!:###"} {
		if _, err := VerifyPassword("x", encoded); !errors.Is(err, ErrInvalidHashFormat) {
			t.Errorf("VerifyPassword(%q) error = %v, want ErrInvalidHashFormat", encoded, err)
		}
	}
}

func TestPasswordValidator(t *testing.T) {
	v := DefaultPasswordValidator()

	if err := v.Validate("Tr0ub4dour&3xplicit"); err != nil {
		t.Errorf("strong password rejected: %v", err)
	}
	if err := v.Validate("short"); err == nil {
		t.Error("expected short password to fail")
	}
	if err := v.Validate("password"); err == nil {
		t.Error("expected dictionary password to fail")
	}
	if err := v.Validate(strings.Repeat("a", 200)); err == nil {
		t.Error("expected overlong password to fail")
	}
}
