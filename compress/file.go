package compress

import (
	"fmt"
	"io"
	"os"

	"github.com/measurekit/tabular/format"
)

// Locate finds base or an archived variant of it (base + codec extension)
// on disk. The plain file wins over archived ones. Returns os.ErrNotExist
// wrapped if no candidate exists.
func Locate(base string) (string, Codec, error) {
	if _, err := os.Stat(base); err == nil {
		return base, NoOpCodec{}, nil
	}

	for _, t := range []format.CompressionType{format.CompressionGzip, format.CompressionZstd, format.CompressionLZ4} {
		c := builtinCodecs[t]
		path := base + c.Extension()
		if _, err := os.Stat(path); err == nil {
			return path, c, nil
		}
	}

	return "", nil, fmt.Errorf("%s[%s]: %w", base, "compressed variants", os.ErrNotExist)
}

// ReadFile reads a whole file, decompressing by file name extension.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ForPath(path).WrapReader(f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	return io.ReadAll(r)
}

// CompressFile rewrites path as path+ext using the given codec and removes
// the original. With the no-op codec the file is left untouched. Returns
// the resulting path.
func CompressFile(path string, c Codec) (string, error) {
	if c.Extension() == "" {
		return path, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := path + c.Extension()
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}

	cw, err := c.WrapWriter(dst)
	if err != nil {
		dst.Close()
		return "", err
	}

	if _, err = io.Copy(cw, src); err == nil {
		err = cw.Close()
	} else {
		cw.Close()
	}
	if err == nil {
		err = dst.Sync()
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("compress %s: %w", path, err)
	}

	src.Close()

	return dstPath, os.Remove(path)
}
