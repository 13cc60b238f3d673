package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

// Status holds the four disjoint classifications of a working tree
// relative to the staging area and the checked-out commit. Every slice is
// path-sorted; untracked directories carry a trailing "/".
type Status struct {
	Added     []string
	Modified  []string
	Deleted   []string
	Untracked []string
}

// Clean reports whether there is nothing to show.
func (s *Status) Clean() bool {
	return len(s.Added) == 0 && len(s.Modified) == 0 &&
		len(s.Deleted) == 0 && len(s.Untracked) == 0
}

// workFile is one live filesystem path prepared for the merge. Tracked
// files cache the size/mode/stat captured during the walk so the
// modified check never stats the same file twice.
type workFile struct {
	path string // repository-relative, slash-separated
	dir  bool
	size int64
	mode string
	stat FileStat
}

// Status classifies every staged and on-disk path as added, modified,
// deleted or untracked. The engine is stateless: it loads the staging
// area, walks the workspace, flattens the HEAD tree, and runs two
// merge-joins over the sorted path sequences.
func (r *Repo) Status() (*Status, error) {
	ix := r.newIndex()
	if err := ix.Load(); err != nil {
		return nil, err
	}
	entries := ix.Entries()

	tracked := make([]string, len(entries))
	for i, e := range entries {
		tracked[i] = e.Path
	}

	var files []workFile
	if err := r.collectWorkFiles(r.RootDir, "", tracked, &files); err != nil {
		return nil, err
	}
	// The walk emits each directory's children in name order, which is
	// not byte order across levels ("a.txt" sorts before "a/b" even
	// though the walk visits a/ first). The merge needs one global order.
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	headPaths, err := r.headTreePaths()
	if err != nil {
		return nil, err
	}

	st := &Status{}
	if err := r.diffIndexWorkspace(entries, files, st); err != nil {
		return nil, err
	}
	diffIndexHead(entries, headPaths, st)

	sort.Strings(st.Added)
	sort.Strings(st.Modified)
	sort.Strings(st.Deleted)
	sort.Strings(st.Untracked)
	return st, nil
}

// diffIndexWorkspace merges the sorted staging entries against the sorted
// workspace files, advancing whichever cursor holds the smaller path:
// staged-only paths are deleted, disk-only paths untracked, and paths on
// both sides go through the modified check.
func (r *Repo) diffIndexWorkspace(entries []IndexEntry, files []workFile, st *Status) error {
	i, w := 0, 0
	for i < len(entries) || w < len(files) {
		switch {
		case w >= len(files):
			r.logger.Debug("deleted", zap.String("path", entries[i].Path))
			st.Deleted = append(st.Deleted, entries[i].Path)
			i++
		case i >= len(entries):
			st.Untracked = append(st.Untracked, untrackedName(files[w]))
			w++
		default:
			cmp := strings.Compare(files[w].path, entries[i].Path)
			switch {
			case cmp < 0:
				st.Untracked = append(st.Untracked, untrackedName(files[w]))
				w++
			case cmp > 0:
				r.logger.Debug("deleted", zap.String("path", entries[i].Path))
				st.Deleted = append(st.Deleted, entries[i].Path)
				i++
			default:
				if !files[w].dir {
					modified, err := r.isFileModified(entries[i], files[w])
					if err != nil {
						return err
					}
					if modified {
						st.Modified = append(st.Modified, entries[i].Path)
					}
				}
				i++
				w++
			}
		}
	}
	return nil
}

func untrackedName(f workFile) string {
	if f.dir {
		return f.path + "/"
	}
	return f.path
}

// isFileModified decides whether a tracked file's content diverged from
// its staged record. The checks are ordered so most files never get read:
// size, then mode, then the timestamp-trust shortcut, and only then the
// content hash. A write that preserves file size and both timestamps
// exactly evades detection; that false negative is the accepted price of
// a fast clean-tree status.
func (r *Repo) isFileModified(e IndexEntry, wf workFile) (bool, error) {
	if wf.size != int64(e.Size) {
		r.logger.Debug("modified: size changed", zap.String("path", e.Path),
			zap.Uint32("staged", e.Size), zap.Int64("disk", wf.size))
		return true, nil
	}

	if wf.mode != e.Mode {
		r.logger.Debug("modified: mode changed", zap.String("path", e.Path),
			zap.String("staged", e.Mode), zap.String("disk", wf.mode))
		return true, nil
	}

	if wf.stat.CtimeSec == e.Stat.CtimeSec && wf.stat.CtimeNsec == e.Stat.CtimeNsec &&
		wf.stat.MtimeSec == e.Stat.MtimeSec && wf.stat.MtimeNsec == e.Stat.MtimeNsec {
		return false, nil
	}

	data, err := r.Workspace.ReadFile(e.Path)
	if err != nil {
		return false, fmt.Errorf("status read %s: %w", e.Path, err)
	}
	if object.HashObject(object.TypeBlob, data) != e.OID {
		r.logger.Debug("modified: content changed", zap.String("path", e.Path))
		return true, nil
	}
	return false, nil
}

// collectWorkFiles walks the working tree depth-first. Directories with
// no staged descendants collapse to a single untracked entry (unless
// empty all the way down, in which case they are invisible); directories
// with staged descendants recurse so only genuinely untracked members
// surface.
func (r *Repo) collectWorkFiles(dir, prefix string, tracked []string, out *[]workFile) error {
	children, err := r.Workspace.ListEntries(dir)
	if err != nil {
		return err
	}
	for _, child := range children {
		rel := child.Name()
		if prefix != "" {
			rel = prefix + "/" + child.Name()
		}
		abs := filepath.Join(dir, child.Name())

		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("status stat %s: %w", rel, err)
		}

		switch {
		case info.Mode().IsRegular():
			wf := workFile{path: rel}
			if isTracked(rel, tracked) {
				wf.size = info.Size()
				wf.mode = ModeString(info)
				wf.stat = statSnapshot(info)
			}
			*out = append(*out, wf)
		case info.IsDir():
			if hasTrackedUnder(rel, tracked) {
				if err := r.collectWorkFiles(abs, rel, tracked, out); err != nil {
					return err
				}
				continue
			}
			nonEmpty, err := r.hasAnyFileUnder(abs)
			if err != nil {
				return err
			}
			if nonEmpty {
				*out = append(*out, workFile{path: rel, dir: true})
			}
		}
	}
	return nil
}

// isTracked reports whether rel itself is staged. tracked is sorted.
func isTracked(rel string, tracked []string) bool {
	i := sort.SearchStrings(tracked, rel)
	return i < len(tracked) && tracked[i] == rel
}

// hasTrackedUnder reports whether dir or anything beneath it is staged.
func hasTrackedUnder(dir string, tracked []string) bool {
	if isTracked(dir, tracked) {
		return true
	}
	prefix := dir + "/"
	i := sort.SearchStrings(tracked, prefix)
	return i < len(tracked) && strings.HasPrefix(tracked[i], prefix)
}

// hasAnyFileUnder reports whether at least one regular file exists
// anywhere beneath dir. Only file content counts: empty directory chains
// are never reported.
func (r *Repo) hasAnyFileUnder(dir string) (bool, error) {
	children, err := r.Workspace.ListEntries(dir)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		abs := filepath.Join(dir, child.Name())
		info, err := os.Stat(abs)
		if err != nil {
			return false, fmt.Errorf("status stat %s: %w", child.Name(), err)
		}
		if info.Mode().IsRegular() {
			return true, nil
		}
		if info.IsDir() {
			found, err := r.hasAnyFileUnder(abs)
			if err != nil {
				return false, err
			}
			if found {
				return true, nil
			}
		}
	}
	return false, nil
}

// headTreePaths flattens the checked-out commit's tree to a sorted path
// list. An unborn branch yields nil.
func (r *Repo) headTreePaths() ([]string, error) {
	head, err := r.Refs.ReadHead()
	if err != nil {
		return nil, err
	}
	if head.IsZero() {
		return nil, nil
	}

	commit, err := r.Store.ReadCommit(head)
	if err != nil {
		return nil, fmt.Errorf("status: HEAD %s: %w", head, err)
	}
	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	sort.Strings(paths)
	return paths, nil
}

// diffIndexHead merges the sorted staging entries against the sorted HEAD
// tree paths; staged paths missing from HEAD are added. Paths present
// only in HEAD mean a staged deletion, which needs an rm operation this
// engine does not implement, so the head cursor just advances past them.
func diffIndexHead(entries []IndexEntry, headPaths []string, st *Status) {
	i, h := 0, 0
	for i < len(entries) {
		if h >= len(headPaths) {
			st.Added = append(st.Added, entries[i].Path)
			i++
			continue
		}
		cmp := strings.Compare(entries[i].Path, headPaths[h])
		switch {
		case cmp < 0:
			st.Added = append(st.Added, entries[i].Path)
			i++
		case cmp > 0:
			h++
		default:
			i++
			h++
		}
	}
}
