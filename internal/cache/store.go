package cache

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DataDir is the asset directory under the output root.
const DataDir = "ss-data"

// Hash returns the content hash used for asset names.
func Hash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 10)
}

// assetStore writes content-addressed files below <output>/ss-data. A name
// is derived from the content, so an existing file is never rewritten.
type assetStore struct {
	outputDir string
}

func (s assetStore) put(data []byte, ext string) (string, error) {
	name := Hash(data)
	if ext != "" {
		name += ext
	}
	dir := filepath.Join(s.outputDir, DataDir)
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create asset directory: %w", err)
	}
	// #nosec G306 -- published site assets must be world-readable
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	return name, nil
}

// reference turns an asset name into the URL written into documents.
func reference(baseURL, name string) string {
	rel := path.Join(DataDir, name)
	if baseURL == "" {
		return "/" + rel
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + rel
}
