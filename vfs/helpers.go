package vfs

import (
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
)

func OpenFileAndGetReader(f File, readonly bool) (*io.SectionReader, error) {
	if err := f.Open(readonly); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "Cannot get file '%s' reader", f.Name())
	}
	return r, nil
}

func OpenFileAndCopy(f File, src io.Reader) error {
	if err := f.Open(false); err != nil {
		return errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	defer f.Close()
	if err := f.Copy(src); err != nil {
		return errors.Wrapf(err, "Cannot copy data to file '%s'", f.Name())
	}
	return nil
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	if f, err := d.GetElement(name); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	} else if f.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	} else {
		return f.(File), nil
	}
}

func DirectoryGetDirectory(d Directory, name string) (Directory, error) {
	if e, err := d.GetElement(name); err != nil {
		return nil, errors.Wrapf(err, "Cannot open directory '%s'", name)
	} else if !e.IsDirectory() {
		return nil, errors.Errorf("'%s' is file, not a directory!", name)
	} else {
		return e.(Directory), nil
	}
}

// Resolves slash separated relative path starting from d.
// Empty path and "/" return d itself.
func Lookup(d Directory, relPath string) (Element, error) {
	var cur Element = d
	for _, part := range splitPath(relPath) {
		dir, ok := cur.(Directory)
		if !ok {
			return nil, errors.Errorf("'%s' is not a directory", cur.Name())
		}
		next, err := dir.GetElement(part)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot resolve '%s'", relPath)
		}
		cur = next
	}
	return cur, nil
}

// Creates every missing directory of relPath below d and returns the last one.
func MakeDirectories(d Directory, relPath string) (Directory, error) {
	cur := d
	for _, part := range splitPath(relPath) {
		e, err := cur.GetElement(part)
		if err != nil {
			nd := NewDirectoryDriver(part)
			nd.Init(cur)
			if err := cur.Add(nd); err != nil {
				return nil, errors.Wrapf(err, "Cannot create directory '%s'", part)
			}
			cur = nd
			continue
		}
		sub, ok := e.(Directory)
		if !ok {
			return nil, errors.Errorf("'%s' exists and is not a directory", part)
		}
		cur = sub
	}
	return cur, nil
}

type WalkFunc func(dirPath string, f File) error

// Calls fn for every file below d. dirPath is slash separated and relative
// to d. Subdirectories are visited only when recursive is set.
func Walk(d Directory, recursive bool, fn WalkFunc) error {
	return walk(d, "", recursive, fn)
}

func walk(d Directory, dirPath string, recursive bool, fn WalkFunc) error {
	names, err := d.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		e, err := d.GetElement(name)
		if err != nil {
			return err
		}
		if e.IsDirectory() {
			if recursive {
				if err := walk(e.(Directory), path.Join(dirPath, name), recursive, fn); err != nil {
					return err
				}
			}
			continue
		}
		if err := fn(dirPath, e.(File)); err != nil {
			return err
		}
	}
	return nil
}

func splitPath(p string) []string {
	parts := make([]string, 0)
	for _, part := range strings.Split(path.Clean("/"+p), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Creates or truncates file name in d and fills it from src
func WriteFile(d Directory, name string, src io.Reader) error {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		nf := NewDirectoryDriverFile(name)
		nf.Init(d)
		if err := d.Add(nf); err != nil {
			return errors.Wrapf(err, "Cannot create file '%s'", name)
		}
		if f, err = DirectoryGetFile(d, name); err != nil {
			return err
		}
	}
	return OpenFileAndCopy(f, src)
}

func ReadFile(d Directory, name string) ([]byte, error) {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	r, err := OpenFileAndGetReader(f, true)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data := make([]byte, r.Size())
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Cannot read file '%s'", name)
	}
	return data, nil
}
