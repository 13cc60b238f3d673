package repo

import (
	"fmt"
	"path"
	"strings"

	"github.com/jotvcs/jot/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode string
	OID  object.Hash
}

// BuildTree converts flat staging entries into a hierarchy of tree
// objects, writing one per directory level and returning the root hash.
//
// entries must be sorted by path (Index.Entries guarantees this); each
// recursion step works on a contiguous sub-slice, so no per-level maps or
// extra allocation of the path set is needed. Children are stored before
// their parent: a failure part-way can leave sub-trees persisted, which
// is harmless because re-storing identical content is idempotent.
func (r *Repo) BuildTree(entries []IndexEntry) (object.Hash, error) {
	return r.buildTreeDir(entries, "")
}

// buildTreeDir writes the tree for one directory level. prefix is empty
// for the root or ends with "/"; entries all live beneath it.
func (r *Repo) buildTreeDir(entries []IndexEntry, prefix string) (object.Hash, error) {
	var treeEntries []object.TreeEntry

	for i := 0; i < len(entries); {
		rel := entries[i].Path[len(prefix):]
		slash := strings.IndexByte(rel, '/')

		if slash < 0 {
			// Direct child file.
			treeEntries = append(treeEntries, object.TreeEntry{
				Mode: entries[i].Mode,
				Name: rel,
				Hash: entries[i].OID,
			})
			i++
			continue
		}

		// Child directory: the sorted order keeps everything beneath it
		// contiguous, so recurse on that range and skip past it.
		dirName := rel[:slash]
		childPrefix := prefix + dirName + "/"
		j := i + 1
		for j < len(entries) && strings.HasPrefix(entries[j].Path, childPrefix) {
			j++
		}
		subHash, err := r.buildTreeDir(entries[i:j], childPrefix)
		if err != nil {
			return "", err
		}
		treeEntries = append(treeEntries, object.TreeEntry{
			Mode: object.TreeModeDir,
			Name: dirName,
			Hash: subHash,
		})
		i = j
	}

	h, err := r.Store.WriteTree(object.NewTree(treeEntries))
	if err != nil {
		return "", fmt.Errorf("build tree %q: %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full slash-separated paths in stored (sorted) order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path: fullPath,
				Mode: entry.Mode,
				OID:  entry.Hash,
			})
		}
	}
	return result, nil
}
