package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// maxDocumentBytes caps schema documents read from any source.
const maxDocumentBytes = 8 << 20

// errInvalidDocument marks documents that were reachable but cannot be a
// schema: directories and oversized bodies.
var errInvalidDocument = errors.New("schema loader: invalid document")

var errDocumentTooLarge = fmt.Errorf("%w: exceeds %d bytes", errInvalidDocument, maxDocumentBytes)

// readLocal reads name from files, or from the OS file system when files is
// nil. Directories and oversized documents are rejected.
func readLocal(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("schema loader: document path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		f   io.ReadCloser
		err error
	)
	if files == nil {
		f, err = os.Open(filepath.Clean(name))
	} else {
		f, err = files.Open(name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if st, ok := f.(interface{ Stat() (fs.FileInfo, error) }); ok {
		info, err := st.Stat()
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", errInvalidDocument, name)
		}
	}
	return readCapped(f)
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentBytes {
		return nil, errDocumentTooLarge
	}
	return data, nil
}
