package service

import (
	"strings"
	"testing"
)

func TestPasswordVerifier_PlainMode(t *testing.T) {
	v := NewPasswordVerifier(false)

	stored, err := v.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if stored != "hunter2" {
		t.Fatalf("plain mode must store the password as-is, got %q", stored)
	}

	if !v.Verify("hunter2", stored) {
		t.Fatalf("expected match")
	}
	if v.Verify("hunter3", stored) {
		t.Fatalf("expected mismatch")
	}
	if v.Verify("hunter", stored) {
		t.Fatalf("expected mismatch on different length")
	}
}

func TestPasswordVerifier_HashedMode(t *testing.T) {
	v := NewPasswordVerifier(true)

	stored, err := v.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if stored == "hunter2" {
		t.Fatalf("hashed mode must not store the plaintext")
	}
	if !strings.HasPrefix(stored, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", stored)
	}

	if !v.Verify("hunter2", stored) {
		t.Fatalf("expected match")
	}
	if v.Verify("hunter3", stored) {
		t.Fatalf("expected mismatch")
	}
}

func TestPasswordVerifier_ModeMismatch(t *testing.T) {
	plain := NewPasswordVerifier(false)
	hashed := NewPasswordVerifier(true)

	plainStored, _ := plain.Hash("pass")
	if hashed.Verify("pass", plainStored) {
		t.Fatalf("plaintext credential must not verify under hashed mode")
	}

	hashedStored, _ := hashed.Hash("pass")
	if plain.Verify("pass", hashedStored) {
		t.Fatalf("bcrypt credential must not verify under plain mode")
	}
}
