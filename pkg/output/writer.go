package output

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"locimages/pkg/loc"
)

const (
	// MaxStemLength caps the filename stem written into aria2c "out" options.
	// Filesystems disagree on the exact limit; 200 stays under all of them.
	MaxStemLength = 200

	// MaxDirNameLength caps collection directory names
	MaxDirNameLength = 200
)

// blockedFileNameChars are characters rejected in filenames by at least one
// of linux, windows, or macOS, plus the ASCII control range
const blockedFileNameChars = `<>:"/\|?*`

// Writer emits discovered images in one of the supported output formats
type Writer interface {
	WriteImage(img loc.Image) error
}

// Options configures the aria2c output format
type Options struct {
	// GroupByCollection sets the aria2c "dir" option to the item's source
	// collection under RootDir. Items without a collection land in RootDir.
	GroupByCollection bool
	// RootDir is the root directory of image downloads
	RootDir string
}

// NewWriter returns a plain writer, or an aria2c input-file writer when aria
// is set
func NewWriter(w io.Writer, aria bool, opts Options) Writer {
	if aria {
		return &AriaWriter{w: w, opts: opts}
	}
	return &PlainWriter{w: w}
}

// PlainWriter emits one URL per line
type PlainWriter struct {
	w io.Writer
}

// WriteImage writes the image reference on its own line
func (p *PlainWriter) WriteImage(img loc.Image) error {
	_, err := fmt.Fprintln(p.w, img.Ref())
	return err
}

// AriaWriter emits URLs in the format aria2c consumes with -i/--input-file:
// the URL followed by indented per-download options. The "out" option names
// the file after the item, and auto-file-renaming is disabled so a rerun
// skips files that already exist instead of producing foo.1.jpg duplicates.
type AriaWriter struct {
	w    io.Writer
	opts Options
}

// WriteImage writes one aria2c input block for the image
func (a *AriaWriter) WriteImage(img loc.Image) error {
	lines := make([]string, 0, 6)

	// Comment naming the source item, for humans reading the file
	if img.ItemID != "" {
		lines = append(lines, "# "+img.ItemID)
	}

	lines = append(lines, img.Ref())
	lines = append(lines, optionLine("out", Filename(img)))

	if a.opts.GroupByCollection {
		lines = append(lines, optionLine("dir", CollectionDir(img, a.opts.RootDir)))
	}

	lines = append(lines, optionLine("auto-file-renaming", "false"))
	lines = append(lines, "")

	_, err := fmt.Fprintln(a.w, strings.Join(lines, "\n"))
	return err
}

// optionLine formats one aria2c per-download option
func optionLine(key, value string) string {
	return fmt.Sprintf("  %s=%s", key, value)
}

// Filename builds the output filename for an image: the item's catalog
// number and title, sanitized and capped, with the suffix taken from the
// asset URL. Inspecting Content-Type would be more robust than trusting the
// URL suffix, but that would double the request count.
func Filename(img loc.Image) string {
	stem := SanitizeFileName(img.Title)
	if number := itemNumber(img.ItemID); number != "" {
		stem = fmt.Sprintf("%s - %s", number, stem)
	}
	if len(stem) > MaxStemLength {
		stem = stem[:MaxStemLength]
	}
	return stem + urlSuffix(img.URL)
}

// CollectionDir builds the download directory for an image, grouping by the
// item's source collection under rootDir. Images without a collection go
// directly into rootDir.
func CollectionDir(img loc.Image, rootDir string) string {
	if rootDir == "" {
		rootDir = "."
	}
	if img.Collection == "" {
		return rootDir
	}

	dir := SanitizeFileName(img.Collection)
	if len(dir) > MaxDirNameLength {
		dir = dir[:MaxDirNameLength]
	}
	return filepath.Join(rootDir, dir)
}

// SanitizeFileName filters out characters known to be rejected in filenames
// on at least one common OS
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 32 || strings.ContainsRune(blockedFileNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// itemNumber returns the catalog number from an item URL, its last path
// segment
func itemNumber(itemID string) string {
	if itemID == "" {
		return ""
	}
	u, err := url.Parse(itemID)
	if err != nil {
		return SanitizeFileName(itemID)
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// urlSuffix returns the file extension of the asset URL's path
func urlSuffix(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
