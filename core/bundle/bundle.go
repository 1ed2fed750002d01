// Package bundle packs a directory of rendered chart outputs into a
// single compressed tar archive, and reads such archives back. Both
// .tar.gz and .tar.xz are supported; the format follows the
// destination file extension.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Create packs srcDir into the archive at dstPath. Entries are placed
// under a base directory named after the archive stem, so extracting
// next to other bundles stays tidy. Parent directories of dstPath are
// created as needed.
func Create(srcDir, dstPath string) error {
	baseDir := Stem(dstPath)
	if baseDir == "" {
		return fmt.Errorf("unsupported bundle format: %s", dstPath)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	defer outFile.Close()

	var compressor io.WriteCloser
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		compressor, err = xz.NewWriter(outFile)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	default:
		compressor = gzip.NewWriter(outFile)
	}
	defer compressor.Close()

	tw := tar.NewWriter(compressor)
	defer tw.Close()

	now := time.Now()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}
		// Normalize timestamps for reproducibility.
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pack bundle: %w", err)
	}

	// Flush tar and compressor before the deferred closes run, so the
	// error surfaces here.
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("finish compression: %w", err)
	}
	return nil
}

// Stem returns the bundle name with its archive extension removed, or
// "" if the path is not a recognized bundle format.
func Stem(path string) string {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".tar.gz"):
		return strings.TrimSuffix(base, ".tar.gz")
	case strings.HasSuffix(base, ".tar.xz"):
		return strings.TrimSuffix(base, ".tar.xz")
	}
	return ""
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens the bundle at path, detecting .tar.gz or .tar.xz
// from the file extension.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case strings.HasSuffix(path, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported bundle format: %s", path)
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback for iterating bundle entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks every entry in the bundle, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// List returns the file entries in the bundle, directories excluded,
// with the leading base directory stripped.
func List(path string) ([]string, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	err = r.Iterate(func(header *tar.Header, _ io.Reader) (bool, error) {
		if header.Typeflag == tar.TypeDir {
			return false, nil
		}
		names = append(names, stripBase(header.Name))
		return false, nil
	})
	return names, err
}

// ReadFile reads one file from the bundle by its base-stripped name.
func ReadFile(path, filename string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var content []byte
	err = r.Iterate(func(header *tar.Header, body io.Reader) (bool, error) {
		if stripBase(header.Name) == filename || header.Name == filename {
			var err error
			content, err = io.ReadAll(body)
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("file not found in bundle: %s", filename)
	}
	return content, nil
}

// stripBase removes the leading base directory from an entry name.
func stripBase(name string) string {
	if idx := strings.Index(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
