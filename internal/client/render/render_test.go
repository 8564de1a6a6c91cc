package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  ", ""},
		{"plain", "Hello world", "Hello world"},
		{"markup", "<p>Hello <strong>world</strong></p>\n<p>again</p>", "Hello world again"},
		{"entities", "Tom &amp; Jerry&#8217;s", "Tom & Jerry’s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(`<h2>Intro</h2><p>See <a href="/about">about</a>.</p>`, "https://a.example")
	assert.Contains(t, got, "## Intro")
	assert.Contains(t, got, "[about](https://a.example/about)")

	assert.Equal(t, "", Markdown("", "https://a.example"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "héllo", Truncate("héllo", 0))
}

func TestMarkdown_KeepsAbsoluteAndSchemeOfBase(t *testing.T) {
	got := Markdown(`<p><a href="https://other.example/x">x</a> <a href="img/y.png">y</a></p>`, "http://127.0.0.1:8080/blog/")
	assert.Contains(t, got, "[x](https://other.example/x)")
	assert.Contains(t, got, "[y](http://127.0.0.1:8080/blog/img/y.png)")
}
