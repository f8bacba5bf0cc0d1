package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageCache holds decoded bitmaps for image elements, keyed by source.
// Failed decodes are cached too so a broken source is reported once.
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]imageEntry
}

type imageEntry struct {
	img image.Image
	err error
}

func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]imageEntry)}
}

// Get returns the decoded image for source, loading it on first use.
func (c *ImageCache) Get(source string) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[source]; ok {
		return e.img, e.err
	}
	img, err := LoadImage(source)
	if err != nil {
		log.WithField("source", truncate(source, 64)).Warnf("Render: image unavailable: %v", err)
	}
	c.entries[source] = imageEntry{img: img, err: err}
	return img, err
}

// Put stores an already decoded image under source.
func (c *ImageCache) Put(source string, img image.Image) {
	c.mu.Lock()
	c.entries[source] = imageEntry{img: img}
	c.mu.Unlock()
}

// Forget drops a cached entry so the next Get reloads it.
func (c *ImageCache) Forget(source string) {
	c.mu.Lock()
	delete(c.entries, source)
	c.mu.Unlock()
}

// Len returns the number of cached sources.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// LoadImage decodes a data: URI or an image file.
func LoadImage(source string) (image.Image, error) {
	if source == "" {
		return nil, fmt.Errorf("empty image source")
	}
	if strings.HasPrefix(source, "data:") {
		data, err := decodeDataURI(source)
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return img, nil
	}

	path := strings.TrimPrefix(source, "file://")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}

// SupportedFormats returns the file extensions the cache can decode.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
