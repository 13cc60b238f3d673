package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	return NewBlob(data), nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name before
// emitting; the invariant must hold on disk no matter how the value was
// assembled. Each entry is
//
//	"<mode> <name>\0" + 20 raw digest bytes
//
// mixing text and binary in one stream, byte-for-byte what Git writes.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree entry %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its serialized form. Entry order is
// preserved as stored.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: entry missing mode separator: %w", ErrCorrupt)
		}
		mode := string(rest[:sp])
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: entry missing name terminator: %w", ErrCorrupt)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < RawHashLen {
			return nil, fmt.Errorf("unmarshal tree: truncated digest for %q: %w", name, ErrCorrupt)
		}
		h, err := HashFromRaw(rest[:RawHashLen])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %v: %w", err, ErrCorrupt)
		}
		rest = rest[RawHashLen:]

		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (omitted for the first commit)
//	author A
//	committer C
//
//	message
//
// The message is emitted verbatim with no trailing structure.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if !c.Parent.IsZero() {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form. Unknown
// header keys are skipped so commits written by richer tools still load.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator: %w", ErrCorrupt)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q: %w", line, ErrCorrupt)
		}
		switch key {
		case "tree":
			if !Hash(val).Valid() {
				return nil, fmt.Errorf("unmarshal commit: bad tree id %q: %w", val, ErrCorrupt)
			}
			c.TreeHash = Hash(val)
		case "parent":
			if !Hash(val).Valid() {
				return nil, fmt.Errorf("unmarshal commit: bad parent id %q: %w", val, ErrCorrupt)
			}
			c.Parent = Hash(val)
		case "author":
			c.Author = val
		case "committer":
			c.Committer = val
		}
	}
	if c.TreeHash.IsZero() {
		return nil, fmt.Errorf("unmarshal commit: missing tree header: %w", ErrCorrupt)
	}
	return c, nil
}
