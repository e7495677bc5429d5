package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.ssh/id_ed25519", filepath.Join(home, ".ssh", "id_ed25519")},
		{"/etc/hosts", "/etc/hosts"},
		{"relative/~/path", "relative/~/path"},
		{"~other/file", "~other/file"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsInteractiveCanBeDisabled(t *testing.T) {
	t.Setenv(EnvNonInteractive, "1")
	assert.False(t, IsInteractive())
}

func TestOpenBrowserRejectsOtherSchemes(t *testing.T) {
	t.Parallel()

	for _, link := range []string{"file:///etc/passwd", "javascript:alert(1)", "not a url"} {
		err := OpenBrowser(link)
		require.Error(t, err, link)
		assert.Contains(t, err.Error(), "not an http(s) URL")
	}
}
