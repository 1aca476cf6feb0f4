// Package store persists DirectoryReports as JSON checkpoints: the
// intermediate file written after a walk and the final file holding the
// merged analyses.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"repodoc/internal/models"
)

// ErrNotFound is returned by Load when the checkpoint file does not exist.
var ErrNotFound = errors.New("checkpoint file not found")

// Save writes report to path as indented JSON. Non-ASCII text is written
// as-is.
func Save(path string, report *models.DirectoryReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}

	lock := newFileLock(path)
	if err := lock.lock(); err != nil {
		return err
	}
	defer lock.unlock()

	if err := atomicWrite(path, buf.Bytes()); err != nil {
		return err
	}
	logrus.Infof("Report written to %s", path)
	return nil
}

// Load reads the report saved at path.
func Load(path string) (*models.DirectoryReport, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("could not access %s: %w", path, err)
	}

	lock := newFileLock(path)
	if err := lock.rlock(); err != nil {
		return nil, err
	}
	defer lock.unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	var report models.DirectoryReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	logrus.Debugf("Report loaded from %s (%d files)", path, report.FileCount)
	return &report, nil
}
