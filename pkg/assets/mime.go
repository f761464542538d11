package assets

import (
	"mime"
	"path"
	"strings"
)

// textContentType maps a text file's extension to the MIME type it is
// served with. YAML and JSON get their specific types, everything else
// is plain text.
func textContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".yml", ".yaml":
		return "text/yaml"
	case ".json":
		return "application/json"
	default:
		return "text/plain"
	}
}

// binaryContentType guesses a binary file's MIME type from its
// extension, falling back to application/octet-stream.
func binaryContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
