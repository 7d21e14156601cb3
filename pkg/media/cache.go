package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// Extensions is the lookup order for cached audio.
var Extensions = []string{"webm", "m4a", "mp3", "opus"}

// Cache maps a video identifier to one audio file under Root. Files are
// neither validated nor evicted.
type Cache struct {
	root string
	stat func(name string) (os.FileInfo, error)
}

// NewCache creates root if needed.
func NewCache(root string) (*Cache, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, utils.WrapIfNotNil(errors.New("cache root is required"))
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, utils.WrapIfNotNil(err, "root="+root)
	}
	return &Cache{root: root, stat: os.Stat}, nil
}

func (c *Cache) Root() string {
	return c.root
}

// Path is the deterministic location for id with extension ext.
func (c *Cache) Path(id, ext string) string {
	return filepath.Join(c.root, id+"."+strings.TrimPrefix(ext, "."))
}

// Lookup returns the first existing regular file for id in Extensions order.
func (c *Cache) Lookup(id string) (string, bool) {
	for _, ext := range Extensions {
		path := c.Path(id, ext)
		info, err := c.stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return path, true
	}
	return "", false
}

// Store copies r into the cache. The file only appears under its final name
// once fully written.
func (c *Cache) Store(id, ext string, r io.Reader) (string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if id == "" || ext == "" {
		return "", utils.WrapIfNotNil(fmt.Errorf("invalid cache entry id=%q ext=%q", id, ext))
	}

	tmp, err := os.CreateTemp(c.root, "."+id+"-*.part")
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", utils.WrapIfNotNil(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", utils.WrapIfNotNil(err)
	}

	path := c.Path(id, ext)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", utils.WrapIfNotNil(err)
	}
	return path, nil
}

// Adopt copies an existing file into the cache under id.
func (c *Cache) Adopt(id, path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	target := c.Path(id, ext)
	if filepath.Clean(path) == target {
		return target, nil
	}

	source, err := os.Open(path)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	defer source.Close()

	return c.Store(id, ext, source)
}
