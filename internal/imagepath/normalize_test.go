package imagepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	base  = "http://localhost:3000"
	mount = "/plantImages"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"absolute https kept", "https://images.unsplash.com/photo-1501004318641", "https://images.unsplash.com/photo-1501004318641"},
		{"absolute http kept", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"mount relative", "/plantImages/a.jpg", base + "/plantImages/a.jpg"},
		{"mount without slash", "plantImages/a.jpg", base + "/plantImages/a.jpg"},
		{"storage prefix stripped", "uploads/plantImages/a.jpg", base + "/plantImages/a.jpg"},
		{"absolute disk path stripped", "/srv/app/uploads/plantImages/a.jpg", base + "/plantImages/a.jpg"},
		{"windows separators", `C:\app\uploads\plantImages\a.jpg`, base + "/plantImages/a.jpg"},
		{"extra leading slashes collapsed", "//other/a.jpg", base + "/other/a.jpg"},
		{"bare file name", "a.jpg", base + "/a.jpg"},
		{"surrounding space", "  /plantImages/a.jpg ", base + "/plantImages/a.jpg"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw, base, mount))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"uploads/plantImages/a.jpg",
		`C:\x\plantImages\b.png`,
		"https://upload.wikimedia.org/c.jpg",
		"d.jpg",
	}
	for _, in := range inputs {
		once := Normalize(in, base, mount)
		assert.True(t, IsAbsoluteURL(once), in)
		assert.Equal(t, once, Normalize(once, base, mount), in)
	}
}

func TestNormalizeTrailingSlashBase(t *testing.T) {
	assert.Equal(t, "https://herbo.example/plantImages/a.jpg", Normalize("plantImages/a.jpg", "https://herbo.example/", mount))
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, IsAbsoluteURL("HTTPS://example.com/x"))
	assert.False(t, IsAbsoluteURL("/plantImages/x"))
	assert.False(t, IsAbsoluteURL("http:///nohost"))
	assert.False(t, IsAbsoluteURL("mailto:a@b.c"))
}
