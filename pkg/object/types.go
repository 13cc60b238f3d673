package object

import "sort"

// Hash is a 40-character lowercase hex-encoded SHA-1 digest. The empty
// string is the zero value and means "no object" (e.g. a root commit's
// parent).
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode strings compatible with Git's canonical forms. Regular
	// files carry "100" plus three octal permission digits; directories
	// use the bare sentinel.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Object is the closed set of storable variants: *Blob, *TreeObj and
// *CommitObj. Type returns the discriminator written into the object
// header; Body returns the canonical body bytes that get framed, hashed
// and stored.
type Object interface {
	Type() ObjectType
	Body() ([]byte, error)
}

// Blob holds raw file data. Construct with NewBlob; the bytes must not
// be mutated afterwards.
type Blob struct {
	Data []byte
}

// NewBlob copies data into a fresh Blob.
func NewBlob(data []byte) *Blob {
	return &Blob{Data: append([]byte(nil), data...)}
}

func (b *Blob) Type() ObjectType { return TypeBlob }

func (b *Blob) Body() ([]byte, error) { return MarshalBlob(b), nil }

// TreeEntry is one entry in a tree object: a child blob or subtree.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode == TreeModeDir }

// TreeObj holds a directory snapshot. Entries are kept sorted by Name;
// NewTree establishes the order and serialization re-asserts it.
type TreeObj struct {
	Entries []TreeEntry
}

// NewTree copies entries and sorts them by name.
func NewTree(entries []TreeEntry) *TreeObj {
	es := append([]TreeEntry(nil), entries...)
	sort.Slice(es, func(i, j int) bool { return es[i].Name < es[j].Name })
	return &TreeObj{Entries: es}
}

func (t *TreeObj) Type() ObjectType { return TypeTree }

func (t *TreeObj) Body() ([]byte, error) { return MarshalTree(t) }

// CommitObj points at a root tree with snapshot metadata. Parent is empty
// for the first commit in history. Author and Committer are opaque
// identity strings ("Name <email> unix-seconds +0000").
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash
	Author    string
	Committer string
	Message   string
}

// NewCommit builds a commit object. A nil message is represented as the
// empty string, never omitted from the body.
func NewCommit(tree, parent Hash, author, committer, message string) *CommitObj {
	return &CommitObj{
		TreeHash:  tree,
		Parent:    parent,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
}

func (c *CommitObj) Type() ObjectType { return TypeCommit }

func (c *CommitObj) Body() ([]byte, error) { return MarshalCommit(c), nil }
