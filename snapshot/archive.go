package snapshot

import (
	"archive/tar"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/measurekit/tabular/compress"
	"github.com/measurekit/tabular/format"
)

// ArchiveDir compresses snapshot.json with the given codec and bundles all
// loose diff files into snapshot_diffs.tar.gz, removing the originals.
// Called by the writer once the measurement is closed; a no-op codec
// leaves the directory as-is.
func ArchiveDir(dir string, c compress.Codec) error {
	if c.Extension() == "" {
		return nil
	}

	snap := filepath.Join(dir, format.SnapshotFileName)
	if _, err := os.Stat(snap); err == nil {
		if _, err := compress.CompressFile(snap, c); err != nil {
			return fmt.Errorf("archive snapshot: %w", err)
		}
	}

	return bundleDiffs(dir)
}

// bundleDiffs collects the loose diff files into the tar.gz bundle. The
// bundle is always gzip regardless of the archive codec: its name is part
// of the directory layout contract.
func bundleDiffs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && diffNameRe.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil
	}

	bundle := filepath.Join(dir, format.DiffBundleName)
	f, err := os.OpenFile(bundle, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create diff bundle: %w", err)
	}

	err = writeDiffBundle(f, dir, names)
	if serr := f.Sync(); err == nil {
		err = serr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(bundle)
		return fmt.Errorf("write diff bundle: %w", err)
	}

	for _, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	return nil
}

func writeDiffBundle(f *os.File, dir string, names []string) error {
	zw, err := (compress.GzipCodec{}).WrapWriter(f)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(zw)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
