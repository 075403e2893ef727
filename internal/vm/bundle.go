package vm

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// BundleFormatVersion changes whenever the image encoding does; a loader
// refuses anything it does not understand.
const BundleFormatVersion = 1

// Bundle is a serialized image plus provenance. BuildID is fresh per build
// so caches can tell two builds of the same program apart.
type Bundle struct {
	FormatVersion int
	BuildID       string
	Image         *Image
}

// WriteBundle encodes an image with a newly minted build id.
func WriteBundle(w io.Writer, img *Image) error {
	b := &Bundle{
		FormatVersion: BundleFormatVersion,
		BuildID:       uuid.NewString(),
		Image:         img,
	}
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// ReadBundle decodes a bundle and validates its format version.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.FormatVersion != BundleFormatVersion {
		return nil, fmt.Errorf("bundle format %d is not supported (want %d)", b.FormatVersion, BundleFormatVersion)
	}
	if b.Image == nil {
		return nil, fmt.Errorf("bundle has no image")
	}
	return &b, nil
}

// SaveBundle writes a bundle file at path.
func SaveBundle(path string, img *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteBundle(f, img)
}

// LoadBundle reads a bundle file at path.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBundle(f)
}
