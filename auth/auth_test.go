package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MySuperSecret123"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Negative comparison (wrong password)
	match, err = ComparePassword("WrongPassword1", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashIsSalted(t *testing.T) {
	req := require.New(t)
	password := "MySuperSecret123"

	// Two hashes of the same password differ because each carries its own salt
	hash1, err := HashPassword(password)
	req.NoError(err)
	hash2, err := HashPassword(password)
	req.NoError(err)
	req.NotEqual(hash1, hash2)

	// Both still verify against the stored salt
	match, err := ComparePassword(password, hash1)
	req.NoError(err)
	req.True(match)
	match, err = ComparePassword(password, hash2)
	req.NoError(err)
	req.True(match)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-encoded-hash")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice42", "ComplexPass123"}, false},
		{"Username too short", RegisterRequest{"ab", "ComplexPass123"}, true},
		{"Username not alphanumeric", RegisterRequest{"alice!", "ComplexPass123"}, true},
		{"Password too short", RegisterRequest{"alice42", "Short1"}, true},
		{"Missing digit", RegisterRequest{"alice42", "NoDigitPass"}, true},
		{"Missing uppercase", RegisterRequest{"alice42", "nouppercase123"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice42", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

// BenchmarkHashPassword measures the CPU/RAM impact of Argon2id
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123")
	}
}
