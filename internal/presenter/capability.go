package presenter

import (
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

const (
	ReadmeName        = "README.md"
	MarkdownMediaType = "text/markdown; charset=utf-8"
	HTMLMediaType     = "text/html; charset=utf-8"
)

// Clipboard places text on a clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard is the host clipboard (pbcopy, xclip/xsel/wl-copy, or the
// Windows API).
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return ferrors.CapabilityError("no clipboard utility available").Build()
	}
	return clipboard.WriteAll(text)
}

// Blob is an in-memory file ready to be handed to an Exporter.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// MarkdownBlob wraps doc as README.md without touching its bytes.
func MarkdownBlob(doc string) Blob {
	return Blob{Name: ReadmeName, ContentType: MarkdownMediaType, Data: []byte(doc)}
}

// Exporter delivers a Blob somewhere the user can pick it up and reports where.
type Exporter interface {
	Export(blob Blob) (string, error)
}

// FileExporter writes blobs into Dir.
type FileExporter struct {
	Dir string
}

// Export writes blob to Dir/blob.Name through a temporary file that is
// renamed into place, so a failed write never leaves a truncated file. The
// temporary file is removed on every error path.
func (e FileExporter) Export(blob Blob) (string, error) {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	target := filepath.Join(dir, filepath.Base(blob.Name))

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(blob.Name)+".*")
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create export file").
			WithContext("path", target).
			Build()
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(blob.Data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write export file").
			WithContext("path", target).
			Build()
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to close export file").
			WithContext("path", target).
			Build()
	}
	// #nosec G302 -- exported documents are meant to be shared.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to set export file mode").
			WithContext("path", target).
			Build()
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to move export file into place").
			WithContext("path", target).
			Build()
	}
	return target, nil
}
