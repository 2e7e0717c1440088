package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Publish copies the finished report at src to dst, overwriting dst.
// A relative dst is taken relative to the current working directory.
func Publish(src, dst string) (string, error) {
	target, err := filepath.Abs(dst)
	if err != nil {
		return "", &FilesystemError{Path: dst, Op: OpCopy, Message: "resolve target", Cause: err}
	}

	in, err := os.Open(src)
	if err != nil {
		msg := "open source"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "report was never written"
		}
		return "", &FilesystemError{Path: src, Op: OpCopy, Message: msg, Cause: err}
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return "", &FilesystemError{Path: target, Op: OpCopy, Message: "create target", Cause: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", &FilesystemError{Path: target, Op: OpCopy, Message: "copy bytes", Cause: err}
	}

	if err := out.Close(); err != nil {
		return "", &FilesystemError{Path: target, Op: OpCopy, Message: "close target", Cause: err}
	}
	return target, nil
}
