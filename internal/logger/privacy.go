package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

var hashSalt string

// InitHashSalt sets the salt mixed into identifier hashes. The config
// package validates presence and length before startup reaches here.
func InitHashSalt(salt string) {
	hashSalt = salt
}

// HashUserID creates a privacy-preserving hash of a Telegram user ID.
// This allows correlating a user's actions without exposing the actual ID.
func HashUserID(userID int64) string {
	return shortHash(fmt.Sprintf("u:%d", userID))
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return shortHash(fmt.Sprintf("c:%d", chatID))
}

// HashToken creates a privacy-preserving hash of an API token so token
// updates can be traced in logs without ever logging the token itself.
func HashToken(token string) string {
	return shortHash("t:" + token)
}

func shortHash(data string) string {
	hash := sha256.Sum256([]byte(data + ":" + hashSalt))
	// First 8 characters are enough to correlate log lines.
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeText redacts user-provided text while preserving enough shape
// for debugging: character counts, plus a short prefix for longer text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	runes := []rune(text)
	if len(runes) <= 10 {
		return fmt.Sprintf("<%d chars>", len(runes))
	}

	words := len(strings.Fields(text))
	return fmt.Sprintf("%s...<%d words, %d chars>", string(runes[:3]), words, len(runes))
}
