// Package assets loads the meshes and images placed in the room.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/transform"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageOptions controls decoding.
type ImageOptions struct {
	// FlipY stores the image bottom row first, matching texture coordinates
	// whose origin is the bottom-left corner.
	FlipY bool
}

// ImageLoader decodes images from an asset root.
type ImageLoader struct {
	root string
}

// NewImageLoader creates a loader resolving relative paths against root.
func NewImageLoader(root string) *ImageLoader {
	return &ImageLoader{root: root}
}

// LoadImage decodes the image at path.
func (l *ImageLoader) LoadImage(ctx context.Context, path string, opts ImageOptions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := resolve(l.root, path)
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", full, err)
	}
	if opts.FlipY {
		img = transform.FlipV(img)
	}
	if fi, err := f.Stat(); err == nil {
		b := img.Bounds()
		log.Debug("Loaded image", "path", full, "format", format,
			"size", humanize.Bytes(uint64(fi.Size())), "width", b.Dx(), "height", b.Dy())
	}
	return img, nil
}

func resolve(root, path string) string {
	if root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
