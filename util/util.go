package util

import (
	"io"
	"os"
	"path"
)

// FileMode is the default FileMode used when creating files.
const FileMode = 0664

// DirMode is the default FileMode used when creating directories.
const DirMode = 0775

// FileExists checks whether some file exists.
func FileExists(file string) bool {
	stat, err := os.Stat(file)
	return err == nil && !stat.IsDir()
}

// DirExists checks whether some directory exists.
func DirExists(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}

// EnsureDir creates the directory (and its parents) if it does not yet exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, DirMode)
}

// ReadFile reads the content of a file.
func ReadFile(file string) ([]byte, error) {
	return os.ReadFile(file)
}

// WriteFile writes data to a file, creating its parent directory if necessary.
// The file is created or truncated as a whole; there are no partial writes.
func WriteFile(file string, data []byte) error {
	if err := EnsureDir(path.Dir(file)); err != nil {
		return err
	}
	return os.WriteFile(file, data, FileMode)
}

// CopyFile copies a file to the given destination, preserving the source's permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return err
	}

	if err := EnsureDir(path.Dir(dst)); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stat.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
