package docgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vitalvas/schemadoc/config"
	"github.com/vitalvas/schemadoc/openapi"
)

// Write renders doc in format and writes it to path. The path "-" writes
// to stdout. Files are replaced atomically so readers never see a partial
// document.
func Write(doc *openapi.Document, format openapi.Format, path string, stdout io.Writer) error {
	data, err := doc.Render(format)
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}

	if path == "" || path == config.StdoutPath {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		return nil
	}

	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
