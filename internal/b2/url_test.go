package b2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybershang/b2bed/internal/b2"
)

func TestBuildURL(t *testing.T) {
	session := b2.Session{DownloadURL: "https://f1.example.com"}

	t.Run("native shape encodes the whole key", func(t *testing.T) {
		got := b2.BuildURL(session, "b", "a/b c.png", "")
		assert.Equal(t, "https://f1.example.com/file/b/a%2Fb%20c.png", got)
	})

	t.Run("custom domain strips trailing slash", func(t *testing.T) {
		got := b2.BuildURL(session, "b", "a/b c.png", "https://cdn.example.com/")
		assert.Equal(t, "https://cdn.example.com/a%2Fb%20c.png", got)
	})
}

func TestParseStorageKey(t *testing.T) {
	t.Run("native url", func(t *testing.T) {
		key, err := b2.ParseStorageKey("https://f1.example.com/file/b/a%2Fb%20c.png", "b", "")
		assert.NoError(t, err)
		assert.Equal(t, "a/b c.png", key)
	})

	t.Run("custom domain url", func(t *testing.T) {
		key, err := b2.ParseStorageKey("https://cdn.example.com/a%2Fb%20c.png", "b", "https://cdn.example.com/")
		assert.NoError(t, err)
		assert.Equal(t, "a/b c.png", key)
	})

	t.Run("roundtrip with BuildURL", func(t *testing.T) {
		session := b2.Session{DownloadURL: "https://f1.example.com"}
		orig := "img/logo_1700000000000_a1b2c3.png"

		u := b2.BuildURL(session, "pics", orig, "")
		key, err := b2.ParseStorageKey(u, "pics", "")
		assert.NoError(t, err)
		assert.Equal(t, orig, key)

		u = b2.BuildURL(session, "pics", orig, "https://cdn.example.com")
		key, err = b2.ParseStorageKey(u, "pics", "https://cdn.example.com")
		assert.NoError(t, err)
		assert.Equal(t, orig, key)
	})

	t.Run("foreign url is an error", func(t *testing.T) {
		_, err := b2.ParseStorageKey("https://other.example.com/x.png", "b", "")
		assert.Error(t, err)
	})
}
