package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// ErrBinary is returned for files that do not look like UTF-8 text.
var ErrBinary = errors.New("file appears to be binary")

const sniffSize = 1024

// ReadFileContent reads a text file for analysis. Files larger than maxSize
// (when positive) are cut down to their head and tail.
func ReadFileContent(absFilepath string, maxSize int64) (string, error) {
	fileInfo, err := os.Stat(absFilepath)
	if err != nil {
		return "", fmt.Errorf("file not found or stat error: %w", err)
	}

	if fileInfo.IsDir() {
		return "", fmt.Errorf("path '%s' is a directory, not a file", absFilepath)
	}

	content, err := os.ReadFile(absFilepath)
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}

	sniff := content
	if len(sniff) > sniffSize {
		sniff = sniff[:sniffSize]
	}
	for _, b := range sniff {
		if b == 0 {
			return "", fmt.Errorf("'%s': %w", filepath.Base(absFilepath), ErrBinary)
		}
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("'%s' is not valid UTF-8: %w", filepath.Base(absFilepath), ErrBinary)
	}

	size := int64(len(content))
	if maxSize > 0 && size > maxSize {
		logrus.Warnf("File '%s' (%d bytes) is too large. Reading partially.", filepath.Base(absFilepath), size)
		half := maxSize / 2
		head := strings.ToValidUTF8(string(content[:half]), "")
		tail := strings.ToValidUTF8(string(content[size-half:]), "")
		return fmt.Sprintf("%s\n\n[... content truncated (file too large) ...]\n\n%s", head, tail), nil
	}

	logrus.Debugf("Read complete file '%s' (%d bytes).", filepath.Base(absFilepath), size)
	return string(content), nil
}
