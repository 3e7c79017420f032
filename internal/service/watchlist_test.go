package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWatchlist(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "basic list",
			content: "AAPL\nMSFT\nGOOG\n",
			want:    []string{"AAPL", "MSFT", "GOOG"},
		},
		{
			name:    "comments and blanks",
			content: "# tech\nAAPL\n\nMSFT # windows\n  # another comment\n",
			want:    []string{"AAPL", "MSFT"},
		},
		{
			name:    "lowercase and duplicates",
			content: "aapl\nAAPL\nmsft\n",
			want:    []string{"AAPL", "MSFT"},
		},
		{
			name:    "only comments",
			content: "# nothing here\n#at all\n",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadWatchlist(writeWatchlist(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadWatchlist_MissingFile(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
