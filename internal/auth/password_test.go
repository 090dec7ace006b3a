package auth

import (
	"strings"
	"testing"
)

// Cost 4 is bcrypt's floor; the production cost would make every test in
// this file cost ~250ms.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestPasswordHash(t *testing.T) {
	ps := newTestPasswordService()

	t.Run("produces a bcrypt hash", func(t *testing.T) {
		hash, err := ps.Hash("my-secret-password")
		if err != nil {
			t.Fatalf("Hash() error = %v", err)
		}
		// bcrypt output starts with $2a$/$2b$
		if !strings.HasPrefix(hash, "$2") {
			t.Errorf("Hash() = %q, not a bcrypt hash", hash)
		}
	})

	t.Run("salts every call", func(t *testing.T) {
		first, _ := ps.Hash("same-password")
		second, _ := ps.Hash("same-password")
		if first == second {
			t.Error("two hashes of one password are identical; the salt is not random")
		}
	})

	t.Run("72-byte limit", func(t *testing.T) {
		// bcrypt silently ignores everything past 72 bytes, so Hash
		// rejects longer inputs instead of pretending they matter.
		if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
			t.Error("Hash() accepted a 73-byte password")
		}
		if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
			t.Errorf("Hash() rejected a 72-byte password: %v", err)
		}
	})
}

func TestPasswordVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	t.Run("matching password", func(t *testing.T) {
		if err := ps.Verify(hash, "correct-horse-battery-staple"); err != nil {
			t.Errorf("Verify() = %v, want nil for the right password", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if err := ps.Verify(hash, "incorrect-horse"); err == nil {
			t.Error("Verify() accepted the wrong password")
		}
	})

	t.Run("empty password", func(t *testing.T) {
		if err := ps.Verify(hash, ""); err == nil {
			t.Error("Verify() accepted an empty password")
		}
	})

	t.Run("garbage hash", func(t *testing.T) {
		if err := ps.Verify("not-a-valid-bcrypt-hash", "password"); err == nil {
			t.Error("Verify() accepted a non-bcrypt hash")
		}
	})
}

func TestPasswordRoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	for _, password := range []string{
		"hello123",
		"p@$$w0rd!#%",
		"пароль-密码",
		"  leading and trailing  ",
		" ",
	} {
		hash, err := ps.Hash(password)
		if err != nil {
			t.Fatalf("Hash(%q) error = %v", password, err)
		}
		if err := ps.Verify(hash, password); err != nil {
			t.Errorf("Verify() failed for %q: %v", password, err)
		}
	}
}
