package videoprompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"sample.webm":         "video/webm",
		"sample.MOV":          "video/quicktime",
		"sample.avi":          "video/x-msvideo",
		"sample.mkv":          "video/x-matroska",
		"sample.mp4":          "video/mp4",
		"/tmp/a.b/sample.MP4": "video/mp4",
		"sample":              "video/mp4",
	}
	for path, want := range cases {
		assert.Equal(t, want, MIMEType(path), path)
	}
}

func TestIsSupported(t *testing.T) {
	for _, path := range []string{"a.mp4", "a.AVI", "a.Mov", "a.webm", "a.MKV", "dir.x/a.mp4"} {
		assert.True(t, IsSupported(path), path)
	}
	for _, path := range []string{"a.gif", "a.mp4.txt", "mp4", "a.", "a.m4v"} {
		assert.False(t, IsSupported(path), path)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		name, file, mime, want string
	}{
		{"name wins", "Recording.MKV", "video/mp4", ".mkv"},
		{"mime fallback", "recording", "video/quicktime", ".mov"},
		{"mime with params", "", "video/webm; codecs=vp9", ".webm"},
		{"unsupported", "clip.gif", "image/gif", ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionFor(tt.file, tt.mime))
		})
	}
}
