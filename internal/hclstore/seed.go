package hclstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/specialistvlad/kiln/internal/ctxlog"
)

// PackageName is the archive of default config records shipped in the
// resource directory.
const PackageName = "cfg.respkg"

// Seed copies the records in the zip archive at archivePath into the
// persistent config directory. Records that already exist there are left
// untouched. Entries that are not top-level "*.cfg" files are ignored. It
// returns the number of records written.
func (s *Store) Seed(ctx context.Context, archivePath string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No config package to seed from.", "path", archivePath)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open config package %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(s.writeDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create config directory %s: %w", s.writeDir, err)
	}

	written := 0
	for _, zf := range r.File {
		name := zf.Name
		if zf.FileInfo().IsDir() || strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, Ext) {
			continue
		}
		dst := filepath.Join(s.writeDir, name)
		if _, err := os.Stat(dst); err == nil {
			logger.Debug("Config already present, not seeding.", "name", name)
			continue
		}
		if err := extract(zf, dst); err != nil {
			return written, fmt.Errorf("failed to seed %s from %s: %w", name, archivePath, err)
		}
		logger.Info("Seeded config file.", "name", name)
		written++
	}
	return written, nil
}

func extract(zf *zip.File, dst string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
