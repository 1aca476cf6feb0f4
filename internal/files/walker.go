package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"repodoc/config"
	"repodoc/internal/models"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// WalkOptions controls which entries the walker keeps.
type WalkOptions struct {
	// IgnoreDirs are directory names that are never entered nor counted.
	IgnoreDirs []string
	// IgnorePrefixes drop any entry whose name starts with one of them.
	IgnorePrefixes []string
	// IgnoreExtensions drop files by lowercased extension (".log").
	IgnoreExtensions []string
	// IgnoreFile is read in every directory and applies to that directory
	// and below.
	IgnoreFile string
	// GlobalIgnoreFile is read once, at the root.
	GlobalIgnoreFile string
}

// DefaultWalkOptions mirrors the default explorer configuration.
func DefaultWalkOptions() WalkOptions {
	return OptionsFromConfig(config.Default().Explorer)
}

// OptionsFromConfig builds walk options from the explorer configuration.
func OptionsFromConfig(cfg config.ExplorerConfig) WalkOptions {
	return WalkOptions{
		IgnoreDirs:       cfg.IgnoreDirs,
		IgnorePrefixes:   cfg.IgnorePrefixes,
		IgnoreExtensions: cfg.IgnoreExtensions,
		IgnoreFile:       cfg.IgnoreFile,
		GlobalIgnoreFile: cfg.GlobalIgnoreFile,
	}
}

// Walker tallies a directory tree into a DirectoryReport.
type Walker struct {
	opts             WalkOptions
	ignoreDirs       map[string]bool
	ignoreExtensions map[string]bool
	now              func() time.Time
}

// NewWalker creates a Walker.
func NewWalker(opts WalkOptions) *Walker {
	w := &Walker{
		opts:             opts,
		ignoreDirs:       make(map[string]bool),
		ignoreExtensions: make(map[string]bool),
		now:              time.Now,
	}
	for _, dir := range opts.IgnoreDirs {
		w.ignoreDirs[dir] = true
	}
	for _, ext := range opts.IgnoreExtensions {
		w.ignoreExtensions[strings.ToLower(ext)] = true
	}
	return w
}

// walkState is the per-walk bookkeeping.
type walkState struct {
	root     string
	report   *models.DirectoryReport
	global   []ignoreList
	perDir   map[string]ignoreList
	listings map[string]*models.DirectoryListing
	order    []string
}

// Walk enumerates root recursively. It fails when root is missing, not a
// directory or unreadable; unreadable sub-entries are recorded in
// report.Skipped and the walk goes on.
func (w *Walker) Walk(root string) (*models.DirectoryReport, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path '%s': %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("could not access root directory '%s': %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s': %w", absRoot, ErrNotDirectory)
	}
	// WalkDir does not follow a symlinked root.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	st := &walkState{
		root: absRoot,
		report: &models.DirectoryReport{
			RunID:      uuid.NewString(),
			FolderName: filepath.Base(absRoot),
			Path:       absRoot,
			Files:      []string{},
			CreatedAt:  w.now().UTC(),
		},
		perDir:   make(map[string]ignoreList),
		listings: make(map[string]*models.DirectoryListing),
	}
	st.global = append(st.global, ignoreList{base: absRoot, rules: parseIgnorePatterns([]string{implicitIgnorePattern})})
	if w.opts.GlobalIgnoreFile != "" {
		rules, err := readIgnoreFile(filepath.Join(absRoot, w.opts.GlobalIgnoreFile))
		if err != nil {
			logrus.Warnf("%v", err)
		}
		st.global = append(st.global, ignoreList{base: absRoot, rules: rules})
	}

	logrus.Infof("Walking '%s'...", absRoot)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		return w.visit(st, path, d, err)
	})
	if err != nil {
		return nil, err
	}

	report := st.report
	report.Structure = []models.DirectoryListing{}
	for _, dir := range st.order {
		listing := st.listings[dir]
		if len(listing.Dirs) > 0 || len(listing.Files) > 0 {
			report.Structure = append(report.Structure, *listing)
		}
	}
	logrus.Infof("Walk complete: %d files, %d directories, %d bytes (%d skipped).",
		report.FileCount, report.DirectoryCount, report.TotalSize, len(report.Skipped))
	return report, nil
}

func (w *Walker) visit(st *walkState, path string, d fs.DirEntry, err error) error {
	if path == st.root {
		if err != nil {
			return fmt.Errorf("could not read root directory '%s': %w", st.root, err)
		}
		w.enterDir(st, path, ".")
		return nil
	}

	rel := relSlash(st.root, path)
	if err != nil {
		logrus.Warnf("Skipping '%s': %v", rel, err)
		st.report.Skipped = append(st.report.Skipped, models.SkippedEntry{Path: rel, Error: err.Error()})
		return nil
	}

	name := d.Name()
	isDir := d.IsDir()
	if w.ignored(st, path, name, isDir) {
		logrus.Debugf("Ignoring '%s'", rel)
		if isDir {
			return filepath.SkipDir
		}
		return nil
	}

	parent := st.listings[relSlash(st.root, filepath.Dir(path))]
	if isDir {
		st.report.DirectoryCount++
		if parent != nil {
			parent.Dirs = append(parent.Dirs, name)
		}
		w.enterDir(st, path, rel)
		return nil
	}

	info, err := d.Info()
	if err != nil {
		logrus.Warnf("Skipping '%s': %v", rel, err)
		st.report.Skipped = append(st.report.Skipped, models.SkippedEntry{Path: rel, Error: err.Error()})
		return nil
	}
	st.report.FileCount++
	st.report.TotalSize += info.Size()
	st.report.Files = append(st.report.Files, rel)
	if parent != nil {
		parent.Files = append(parent.Files, name)
	}
	return nil
}

// enterDir registers the listing of a kept directory and loads its ignore
// file.
func (w *Walker) enterDir(st *walkState, path, rel string) {
	st.listings[rel] = &models.DirectoryListing{Dir: rel, Dirs: []string{}, Files: []string{}}
	st.order = append(st.order, rel)

	if w.opts.IgnoreFile == "" {
		return
	}
	rules, err := readIgnoreFile(filepath.Join(path, w.opts.IgnoreFile))
	if err != nil {
		logrus.Warnf("%v", err)
		return
	}
	if len(rules) > 0 {
		st.perDir[path] = ignoreList{base: path, rules: rules}
	}
}

func (w *Walker) ignored(st *walkState, path, name string, isDir bool) bool {
	if isDir && w.ignoreDirs[name] {
		return true
	}
	for _, prefix := range w.opts.IgnorePrefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	if !isDir && w.ignoreExtensions[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	for _, list := range st.global {
		if list.match(path, name, isDir) {
			return true
		}
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if list, ok := st.perDir[dir]; ok && list.match(path, name, isDir) {
			return true
		}
		if dir == st.root || dir == filepath.Dir(dir) {
			break
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
