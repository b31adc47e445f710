package files

import (
	"os"
	"path/filepath"

	apperrors "cryptocap/internal/errors"
)

const writeProbe = ".cryptocap_write_test"

// PrepareOutputDir creates dir when missing and checks that it accepts new files
func PrepareOutputDir(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewExportError("failed to create output directory "+dir, err)
	}

	probe := filepath.Join(dir, writeProbe)
	f, err := os.Create(probe)
	if err != nil {
		return apperrors.NewExportError("output directory "+dir+" is not writable", err)
	}
	f.Close()
	os.Remove(probe)
	return nil
}
