// Package ops backs up and restores the engine's snapshot directory. The
// snapshot dir is flat: a handful of JSON files, no nesting, so archives
// stay small and restores are trivially verifiable.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Backup writes every snapshot file in dataDir into a .tar.gz archive.
// Subdirectories and symlinks are skipped; the snapshot dir is flat and
// anything nested was not written by the engine.
func Backup(dataDir, archivePath string) error {
	dataDir = filepath.Clean(strings.TrimSpace(dataDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if dataDir == "" || archivePath == "" {
		return fmt.Errorf("dataDir and archivePath are required")
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("snapshot source is not a directory: %s", dataDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	names, err := snapshotNames(dataDir)
	if err != nil {
		return err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, name := range names {
		path := filepath.Join(dataDir, name)
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, src); err != nil {
			_ = src.Close()
			return err
		}
		if err := src.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Restore unpacks an archive into targetDir. Entries with absolute or
// traversing paths abort the restore.
func Restore(archivePath, targetDir string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return fmt.Errorf("archivePath and targetDir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, err := sanitizeEntryName(hdr.Name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(targetDir, rel)
		dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, tr); err != nil {
			_ = dst.Close()
			return err
		}
		if err := dst.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Drill proves an archive is restorable: backup, restore to a scratch
// dir, compare digests. Returns the archive path and the shared digest.
func Drill(dataDir, workDir, stamp string) (archive, digest string, err error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", "", err
	}
	archive = filepath.Join(workDir, "pyd-drill-"+stamp+".tar.gz")
	restoreDir := filepath.Join(workDir, "pyd-drill-restore-"+stamp)

	if err := Backup(dataDir, archive); err != nil {
		return "", "", err
	}
	if err := Restore(archive, restoreDir); err != nil {
		return "", "", err
	}

	srcDigest, err := Digest(dataDir)
	if err != nil {
		return "", "", err
	}
	restoredDigest, err := Digest(restoreDir)
	if err != nil {
		return "", "", err
	}
	if srcDigest != restoredDigest {
		return "", "", fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoredDigest)
	}
	return archive, srcDigest, nil
}

// Digest hashes the snapshot files in a directory, names and contents,
// in a stable order.
func Digest(dir string) (string, error) {
	names, err := snapshotNames(dir)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, name := range names {
		_, _ = io.WriteString(h, name)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func snapshotNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func sanitizeEntryName(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("unexpected nested archive entry: %s", name)
	}
	return name, nil
}
