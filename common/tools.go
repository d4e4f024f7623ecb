package common

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Alphabet is the character set used for generated short tokens.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

func Expired(expireAt time.Time) bool {
	return time.Now().After(expireAt)
}

// HomeExpand replaces a leading '~' with the user home directory.
func HomeExpand(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
