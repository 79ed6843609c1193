package sessionstore

import (
	"io/fs"
	"os"
)

var (
	_ FS = osFS{}
	_ FS = &os.Root{}
)

// FS is the subset of file system operations the store needs. It is
// implemented by the host file system and by *os.Root, which confines all
// operations to a single directory tree.
type FS interface {
	// FS returns the underlying file system interface.
	FS() fs.FS

	// Open opens a file with the given name for reading.
	Open(name string) (*os.File, error)
	// OpenFile opens a file with the given name and flags.
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	// Stat returns the FileInfo structure describing file.
	Stat(name string) (os.FileInfo, error)
	// Remove removes the named file or (empty) directory.
	Remove(name string) error
	// Mkdir creates a new directory with the given name and permission bits.
	Mkdir(name string, perm os.FileMode) error
}

type osFS struct{}

func (osFS) Open(name string) (*os.File, error) {
	return os.Open(name)
}

func (osFS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

func (osFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osFS) Remove(name string) error {
	return os.Remove(name)
}

func (osFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(name, perm)
}

func (osFS) FS() fs.FS {
	return osReadFS{}
}

// osReadFS opens names as given, so absolute paths keep working.
type osReadFS struct{}

func (osReadFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}
