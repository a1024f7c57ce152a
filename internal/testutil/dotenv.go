// Package testutil holds helpers for tests that talk to the live Netlify API.
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	loadOnce sync.Once
	loadErr  error
)

// LoadDotEnv loads variables from the nearest ".env" file, searching from the
// working directory upwards. Variables already set in the environment win.
// A missing file is not an error.
func LoadDotEnv() error {
	loadOnce.Do(func() {
		path, ok := findUpwards(".env")
		if !ok {
			return
		}
		loadErr = loadEnvFile(path)
	})
	return loadErr
}

// RequireEnv returns the values of keys, skipping the test when any of them
// is unset after .env has been loaded.
func RequireEnv(t testing.TB, keys ...string) map[string]string {
	t.Helper()
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("load .env: %v", err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			t.Skipf("%s not set; skipping live test", k)
		}
		out[k] = v
	}
	return out
}

func findUpwards(name string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, val, ok := parseEnvLine(sc.Text())
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return err
		}
	}
	return sc.Err()
}

// parseEnvLine accepts KEY=VALUE, optionally prefixed with "export" and with
// the value in single or double quotes.
func parseEnvLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, val, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}
	val = strings.TrimSpace(val)
	if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
		val = val[1 : len(val)-1]
	}
	return key, val, true
}
