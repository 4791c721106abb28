// Package archive builds the bulk-download zip from converted results.
package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// ArchiveName is the suggested filename for the bulk download.
const ArchiveName = "images-converted.zip"

// Item is one named blob to place in the archive.
type Item struct {
	Name string
	Data []byte
}

// Build writes a zip archive containing the items, in order, to w.
// Duplicate names get a numeric suffix before the extension so every item
// survives extraction.
func Build(w io.Writer, items []Item) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(items))

	for _, item := range items {
		name := dedupe(item.Name, seen)
		f, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("creating archive entry %s: %w", name, err)
		}
		if _, err := f.Write(item.Data); err != nil {
			zw.Close()
			return fmt.Errorf("writing archive entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// dedupe returns a unique name, appending " (n)" before the extension for
// repeats: "photo.webp", "photo (1).webp", ...
func dedupe(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}

	stem, ext := name, ""
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			stem, ext = name[:i], name[i:]
			break
		}
		if name[i] == '/' {
			break
		}
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
