package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
)

var (
	// ErrNotFound means no object file exists for the requested id. Often
	// an expected state (e.g. probing an unborn HEAD), not a failure.
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt means an object file or body failed to parse: bad zlib
	// stream, missing NUL separator, malformed "type length" header, or a
	// body that contradicts its declared length. Fatal to the operation.
	ErrCorrupt = errors.New("corrupt object")
)

// cacheSize bounds the in-memory cache of decoded objects.
const cacheSize = 512

type cachedObj struct {
	objType ObjectType
	body    []byte
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Object files hold the
// zlib-compressed envelope "type len\0body"; the id is the SHA-1 of the
// uncompressed envelope.
type Store struct {
	root  string
	cache *lru.Cache[Hash, cachedObj]
}

// NewStore creates a Store rooted at the given control directory. The
// objects/ subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	cache, _ := lru.New[Hash, cachedObj](cacheSize) // cacheSize > 0, cannot fail
	return &Store{root: root, cache: cache}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
// It never decompresses anything.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	if s.cache.Contains(h) {
		return true
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Storing content
// that already exists is a no-op beyond the hash computation. New objects
// are zlib-compressed into a temp file and renamed into place so no
// reader can observe a half-written object.
func (s *Store) Write(obj Object) (Hash, error) {
	body, err := obj.Body()
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	h := HashObject(obj.Type(), body)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	header := fmt.Sprintf("%s %d\x00", obj.Type(), len(body))
	_, err = zw.Write([]byte(header))
	if err == nil {
		_, err = zw.Write(body)
	}
	if err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	s.cache.Add(h, cachedObj{objType: obj.Type(), body: append([]byte(nil), body...)})
	return h, nil
}

// Read retrieves an object by hash, decompresses it, strips the header
// and returns the declared type and body.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !h.Valid() {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	if c, ok := s.cache.Get(h); ok {
		return c.objType, append([]byte(nil), c.body...), nil
	}

	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: bad zlib stream (%v): %w", h, err, ErrCorrupt)
	}
	raw, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: truncated zlib stream (%v): %w", h, err, ErrCorrupt)
	}

	// Parse envelope: "type len\0body"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: no NUL separator: %w", h, ErrCorrupt)
	}
	header := string(raw[:nulIdx])
	body := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q: %w", h, header, ErrCorrupt)
	}
	objType := ObjectType(parts[0])
	switch objType {
	case TypeBlob, TypeTree, TypeCommit:
	default:
		return "", nil, fmt.Errorf("object read %s: unknown type %q: %w", h, parts[0], ErrCorrupt)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], ErrCorrupt)
	}
	if len(body) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d): %w", h, length, len(body), ErrCorrupt)
	}

	s.cache.Add(h, cachedObj{objType: objType, body: append([]byte(nil), body...)})
	return objType, body, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(b)
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(tr)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(c)
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}
