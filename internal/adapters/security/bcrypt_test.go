package security

import "testing"

func TestBcryptHashAndCompare(t *testing.T) {
	t.Parallel()

	// Minimum cost keeps the suite fast; the contract is identical.
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("CorrectHorse9")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "CorrectHorse9" {
		t.Fatalf("hash must not be the plaintext")
	}

	if err := hasher.Compare(hash, "CorrectHorse9"); err != nil {
		t.Fatalf("compare with correct password failed: %v", err)
	}
	if err := hasher.Compare(hash, "WrongHorse9"); err == nil {
		t.Fatalf("compare with wrong password must fail")
	}

	second, err := hasher.Hash("CorrectHorse9")
	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}
	if second == hash {
		t.Fatalf("bcrypt hashes must be salted and differ between calls")
	}
}

func TestBcryptDefaultCostFallback(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(0)
	if _, err := hasher.Hash("CorrectHorse9"); err != nil {
		t.Fatalf("hash with fallback cost failed: %v", err)
	}
}
