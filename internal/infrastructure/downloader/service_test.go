package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with params", "https://www.youtube.com/watch?list=x&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
		})
	}

	t.Run("non-video URL", func(t *testing.T) {
		_, err := ExtractVideoID("https://news.example.com/feed.xml")
		assert.Error(t, err)
	})
}

func TestIsYouTubeURL(t *testing.T) {
	assert.True(t, IsYouTubeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.False(t, IsYouTubeURL("https://news.example.com/feed.xml"))
}
