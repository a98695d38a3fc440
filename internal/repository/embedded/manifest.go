package embedded

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
)

// manifestSuffix names the file kept next to chromem's collection
// directories. chromem only loads subdirectories, so it never sees these.
const manifestSuffix = ".collection.json"

// manifest is the part of a collection definition chromem cannot return.
type manifest struct {
	VectorDim int    `json:"vector_dim"`
	Distance  string `json:"distance"`
	CreatedAt int64  `json:"created_at"`
}

func manifestOf(col domcol.Collection) manifest {
	return manifest{VectorDim: col.VectorDim(), Distance: col.Distance(), CreatedAt: col.CreatedAt()}
}

func (m manifest) collection(name string) domcol.Collection {
	return domcol.Reconstruct(name, m.VectorDim, m.CreatedAt)
}

func manifestPath(dir, name string) string {
	return filepath.Join(dir, name+manifestSuffix)
}

func writeManifest(dir, name string, m manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath(dir, name), data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// readManifest reports ok=false when the collection has no manifest.
func readManifest(dir, name string) (m manifest, ok bool, err error) {
	data, err := os.ReadFile(manifestPath(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return manifest{}, false, nil
	}
	if err != nil {
		return manifest{}, false, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, false, fmt.Errorf("decode manifest %s: %w", manifestPath(dir, name), err)
	}
	if m.VectorDim <= 0 {
		return manifest{}, false, fmt.Errorf("manifest %s: invalid vector_dim %d", manifestPath(dir, name), m.VectorDim)
	}
	return m, true, nil
}
