package builder

import (
	"strconv"
	"strings"
)

type fileKind int

const (
	fileUnknown fileKind = iota
	fileDescriptor
	fileImage
	fileMedia
	fileIgnored
)

const faviconName = "favicon.ico"

// classify maps a key relative to an item's own directory to a file kind.
// For images the pixel size encoded in the file name is returned alongside;
// a size of 0 means the name carried no usable size and the file must not
// be registered.
func classify(name, feedName string) (fileKind, int) {
	switch {
	case strings.HasSuffix(name, ".md"):
		return fileDescriptor, 0
	case strings.HasSuffix(name, ".png"):
		return fileImage, imageSize(name)
	case strings.HasSuffix(name, ".mp3"):
		return fileMedia, 0
	case name == faviconName || name == feedName:
		// Expected non-content artifacts.
		return fileIgnored, 0
	default:
		return fileUnknown, 0
	}
}

// imageSize parses the pixel size out of an image file name: the digits
// directly preceding the extension, optionally separated from the rest of
// the name by a dash ("cover-300.png" and "cover300.png" are both 300).
// Returns 0 if the name encodes no positive size.
func imageSize(name string) int {
	base := strings.TrimSuffix(name, ".png")

	end := len(base)
	start := end
	for start > 0 && base[start-1] >= '0' && base[start-1] <= '9' {
		start--
	}

	if start == end {
		return 0
	}

	size, err := strconv.Atoi(base[start:end])
	if err != nil || size <= 0 {
		return 0
	}

	return size
}
