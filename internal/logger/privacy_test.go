package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Initialize hash salt for all tests in this package.
	InitHashSalt("test-salt-for-unit-tests-minimum-32-chars")
	os.Exit(m.Run())
}

func TestHashUserID(t *testing.T) {
	t.Run("produces consistent hash for same user ID", func(t *testing.T) {
		hash1 := HashUserID(12345)
		hash2 := HashUserID(12345)
		require.Equal(t, hash1, hash2)
	})

	t.Run("produces different hashes for different user IDs", func(t *testing.T) {
		hash1 := HashUserID(12345)
		hash2 := HashUserID(67890)
		require.NotEqual(t, hash1, hash2)
	})

	t.Run("produces 8 character hash", func(t *testing.T) {
		hash := HashUserID(12345)
		require.Len(t, hash, 8)
	})

	t.Run("changes hash when salt changes", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		hash1 := HashUserID(12345)

		hashSalt = "different-salt"
		hash2 := HashUserID(12345)

		require.NotEqual(t, hash1, hash2)
	})
}

func TestHashChatID(t *testing.T) {
	t.Run("produces consistent hash for same chat ID", func(t *testing.T) {
		hash1 := HashChatID(12345)
		hash2 := HashChatID(12345)
		require.Equal(t, hash1, hash2)
	})

	t.Run("produces different hashes for different chat IDs", func(t *testing.T) {
		hash1 := HashChatID(12345)
		hash2 := HashChatID(67890)
		require.NotEqual(t, hash1, hash2)
	})
}

func TestHashToken(t *testing.T) {
	t.Run("produces consistent hash and never the token itself", func(t *testing.T) {
		token := "very-secret-zenmoney-token"
		hash1 := HashToken(token)
		hash2 := HashToken(token)
		require.Equal(t, hash1, hash2)
		require.Len(t, hash1, 8)
		require.NotContains(t, token, hash1)
	})

	t.Run("produces different hashes for different tokens", func(t *testing.T) {
		require.NotEqual(t, HashToken("token-a"), HashToken("token-b"))
	})
}

func TestSanitizeText(t *testing.T) {
	t.Run("redacts empty text", func(t *testing.T) {
		result := SanitizeText("")
		require.Equal(t, "<empty>", result)
	})

	t.Run("shows length for short text", func(t *testing.T) {
		result := SanitizeText("short")
		require.Equal(t, "<5 chars>", result)
	})

	t.Run("shows prefix for longer text", func(t *testing.T) {
		result := SanitizeText("this is a long text")
		require.Contains(t, result, "thi...")
		require.Contains(t, result, "19 chars")
	})

	t.Run("counts cyrillic text in runes", func(t *testing.T) {
		result := SanitizeText("купил хлеб в магазине")
		require.Contains(t, result, "куп...")
		require.Contains(t, result, "4 words")
		require.Contains(t, result, "21 chars")
		require.NotContains(t, result, "магазине")
	})
}

func TestInitHashSalt(t *testing.T) {
	t.Run("sets the hash salt", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		salt := "this-is-a-valid-salt-with-at-least-32-characters"
		InitHashSalt(salt)

		require.Equal(t, salt, hashSalt)
	})
}
