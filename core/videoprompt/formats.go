package videoprompt

import (
	"path/filepath"
	"strings"
)

const defaultMIMEType = "video/mp4"

// SupportedExtensions lists the accepted video extensions, lower case.
var SupportedExtensions = []string{".mp4", ".avi", ".mov", ".webm", ".mkv"}

var mimeByExtension = map[string]string{
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".mp4":  defaultMIMEType,
}

// IsSupported reports whether path has one of SupportedExtensions, ignoring case.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// MIMEType maps the extension of path to a video MIME type. Anything
// unknown is video/mp4.
func MIMEType(path string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return defaultMIMEType
}

// ExtensionFor picks a supported extension for an upload, preferring the
// one in name and falling back to the MIME type. It returns "" when neither
// identifies a supported format.
func ExtensionFor(name, mimeType string) string {
	if IsSupported(name) {
		return strings.ToLower(filepath.Ext(name))
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	for ext, mime := range mimeByExtension {
		if mime == mimeType {
			return ext
		}
	}
	return ""
}
