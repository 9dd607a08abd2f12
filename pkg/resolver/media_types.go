package resolver

import "strings"

var mediaTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"apng": "image/apng",
	"gif":  "image/gif",
	"webp": "image/webp",
	"avif": "image/avif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"mp4":  "video/mp4",
}

// MediaType returns the MIME type served for the given file extension.
func MediaType(extension string) (string, bool) {
	mediaType, known := mediaTypes[strings.ToLower(strings.TrimPrefix(extension, "."))]
	return mediaType, known
}

var extensionAliases = map[string]string{
	"gifv": "mp4",
}

// NormalizeExtension lowercases extension, applies aliases such as gifv
// and reports whether the result is a served media type.
func NormalizeExtension(extension string) (string, bool) {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	if alias, exists := extensionAliases[extension]; exists {
		extension = alias
	}

	_, known := mediaTypes[extension]
	return extension, known
}
