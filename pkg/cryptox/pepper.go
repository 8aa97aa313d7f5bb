package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// The pepper is appended to every password before hashing. It lives in a
// file next to the database so a leaked database alone is not enough to
// brute-force hashes. With no file configured, hashing runs unpeppered.
var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile string
	pepperSet  bool
)

// SetPepperPath configures where the pepper is loaded from (or created).
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepperSet = false
}

// SetPepper overrides the pepper value directly. Used by tests.
func SetPepper(value string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = value
	pepperSet = true
}

// GetPepper returns the active pepper, loading it on first use. A pepper
// file that exists but cannot be read is fatal: hashing with a different
// pepper would lock every user out.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepperSet {
		return pepper
	}

	value, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("error", err))
		os.Exit(1)
	}
	pepper = value
	pepperSet = true
	return pepper
}

func loadOrGeneratePepper(file string) (string, error) {
	if file == "" {
		return "", nil
	}
	file = filepath.Clean(file)

	data, err := os.ReadFile(file)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return "", err
	}
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.WriteFile(file, []byte(value), 0o600); err != nil {
		return "", err
	}
	return value, nil
}
