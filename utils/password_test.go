package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw1234" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "pw1234") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	h1, _ := HashPassword("pw1234")
	h2, _ := HashPassword("pw1234")
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}
