package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// implicitIgnorePattern hides the ignore files themselves (.gitignore,
// .repodocignore, .dockerignore, ...).
const implicitIgnorePattern = ".*ignore*"

type ignoreRule struct {
	pattern  string
	dirOnly  bool
	anchored bool
}

// ignoreList is the set of rules read from one ignore file. Anchored rules
// are matched against the path relative to base.
type ignoreList struct {
	base  string
	rules []ignoreRule
}

// parseIgnorePatterns turns gitignore-style lines into rules. Negated
// patterns are not supported and are dropped.
func parseIgnorePatterns(lines []string) []ignoreRule {
	var rules []ignoreRule
	for _, line := range lines {
		p := strings.TrimSpace(line)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if strings.HasPrefix(p, "!") {
			logrus.Debugf("Negated ignore pattern '%s' is not supported, skipping.", p)
			continue
		}

		rule := ignoreRule{}
		if strings.HasSuffix(p, "/") {
			rule.dirOnly = true
			p = strings.TrimRight(p, "/")
		}
		if strings.HasPrefix(p, "/") {
			rule.anchored = true
			p = strings.TrimLeft(p, "/")
		} else if strings.Contains(p, "/") {
			rule.anchored = true
		}
		if p == "" || !doublestar.ValidatePattern(p) {
			logrus.Warnf("Invalid ignore pattern '%s', skipping.", line)
			continue
		}
		rule.pattern = p
		rules = append(rules, rule)
	}
	return rules
}

// readIgnoreFile loads the rules of an ignore file. A missing file yields an
// empty list.
func readIgnoreFile(path string) ([]ignoreRule, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open ignore file '%s': %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read ignore file '%s': %w", path, err)
	}
	return parseIgnorePatterns(lines), nil
}

func (l ignoreList) match(absPath, name string, isDir bool) bool {
	rel := ""
	for _, rule := range l.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		if !rule.anchored {
			if ok, _ := doublestar.Match(rule.pattern, name); ok {
				return true
			}
			continue
		}
		if rel == "" {
			r, err := filepath.Rel(l.base, absPath)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(r)
		}
		if ok, _ := doublestar.Match(rule.pattern, rel); ok {
			return true
		}
	}
	return false
}
