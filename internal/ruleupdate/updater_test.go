package ruleupdate

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWritesFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[Order]\nA.esp\nB.esp\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "mlox_base.txt")

	u := NewUpdater(2)
	results := u.Fetch([]RuleFile{{URL: srv.URL, DestPath: dest}})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Error)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "[Order]\nA.esp\nB.esp\n", string(content))
}

func TestFetchSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "cached.txt")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0644))

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	u := NewUpdater(1)
	results := u.Fetch([]RuleFile{{URL: srv.URL, DestPath: dest}})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Error)
	assert.False(t, called)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(content))
}

func TestFetchReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "missing.txt")

	u := NewUpdater(1)
	results := u.Fetch([]RuleFile{{URL: srv.URL, DestPath: dest}})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
}
