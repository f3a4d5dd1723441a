package serialize

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"go.uber.org/zap"
)

// BlobWriter stores each serialized element as <dir>/<unique-id>.<ext>.
type BlobWriter struct {
	dir     string
	log     *zap.SugaredLogger
	written []string
	seen    map[string]bool
}

// NewBlobWriter creates dir if needed.
func NewBlobWriter(dir string, log *zap.SugaredLogger) (*BlobWriter, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &BlobWriter{dir: dir, log: log, seen: make(map[string]bool)}, nil
}

// Output implements Writer.
func (*BlobWriter) Output() string { return config.OutputSerialized }

// Write stores one blob. Elements sharing a unique id overwrite each
// other; the collision is logged.
func (w *BlobWriter) Write(s element.Stage) error {
	b, ok := s.(*element.Serialized)
	if !ok {
		return errors.Newf("%s: expected a serialized element, got %T", s.Base().UniqueID, s)
	}
	ext := strings.TrimPrefix(b.Ext, ".")
	if ext == "" {
		ext = "bin"
	}
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(b.UniqueID) + "." + ext
	path := filepath.Join(w.dir, name)
	if w.seen[path] {
		w.log.Warnw("overwriting blob of an element with the same unique id", "id", b.ID, "path", path)
	}
	if err := os.WriteFile(path, b.Geometry, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if !w.seen[path] {
		w.seen[path] = true
		w.written = append(w.written, path)
	}
	return nil
}

// Paths returns the files written so far.
func (w *BlobWriter) Paths() []string { return w.written }

// Close implements Writer.
func (*BlobWriter) Close() error { return nil }
