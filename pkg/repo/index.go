package repo

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

const (
	indexSignature  = "DIRC"
	indexVersion    = 2
	indexHeaderSize = 12
	entryFixedSize  = 62

	// maxPathFlagLen is the widest name length the 12-bit flags field can
	// carry; longer names store the sentinel and are read up to their NUL.
	maxPathFlagLen = 0xFFF
)

// FileStat is the filesystem provenance stored per staging entry. It is a
// change-detection heuristic, never content truth; all fields are the
// 32-bit truncations the on-disk format prescribes.
type FileStat struct {
	CtimeSec  uint32
	CtimeNsec uint32
	MtimeSec  uint32
	MtimeNsec uint32
	Dev       uint32
	Ino       uint32
	UID       uint32
	GID       uint32
}

// IndexEntry records one staged path: repository-relative slash-separated
// Path, octal Mode string, the staged blob id, the (truncated) file size
// and the stat snapshot taken when the content was staged.
type IndexEntry struct {
	Path string
	Mode string
	OID  object.Hash
	Size uint32
	Stat FileStat
}

// Index is the staging area: an ordered set of path entries persisted in
// a big-endian binary file with a trailing SHA-1 checksum. Version 2 is
// written; versions 2, 3 and 4 are accepted on read. A missing file is an
// empty staging area; a corrupt one recovers to empty with a warning
// rather than failing the operation.
type Index struct {
	path    string
	logger  *zap.Logger
	entries []IndexEntry
}

// NewIndex returns an empty staging area bound to path. Call Load to read
// the persisted state.
func NewIndex(path string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{path: path, logger: logger}
}

// Load reads the persisted staging area. Corruption (bad checksum, bad
// signature, unsupported version) resets to empty and warns; a truncated
// entry stream keeps the entries parsed so far. Only real IO failures are
// returned as errors.
func (ix *Index) Load() error {
	ix.entries = nil

	data, err := os.ReadFile(ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			ix.logger.Debug("no index file, starting empty", zap.String("path", ix.path))
			return nil
		}
		return fmt.Errorf("load index: %w", err)
	}

	entries, warn := decodeIndex(data)
	if warn != "" {
		ix.logger.Warn("index corrupt, recovering",
			zap.String("path", ix.path),
			zap.String("reason", warn),
			zap.Int("entries_kept", len(entries)))
	} else {
		ix.logger.Debug("loaded index", zap.Int("entries", len(entries)))
	}
	ix.entries = entries
	return nil
}

// Save sorts the entries by path, serializes them with the trailing
// checksum and atomically replaces the index file.
func (ix *Index) Save() error {
	sort.Slice(ix.entries, func(i, j int) bool { return ix.entries[i].Path < ix.entries[j].Path })

	data, err := encodeIndex(ix.entries)
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	dir := filepath.Dir(ix.path)
	tmp, err := os.CreateTemp(dir, ".tmp-index-*")
	if err != nil {
		return fmt.Errorf("save index tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save index write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index close: %w", err)
	}
	if err := os.Rename(tmpName, ix.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index rename: %w", err)
	}

	ix.logger.Debug("saved index", zap.Int("entries", len(ix.entries)))
	return nil
}

// Add inserts or replaces the entry for path. A single name cannot be
// both a file and a directory, so any entry whose path is a strict
// parent-directory prefix of the new path, or lies strictly beneath it,
// is evicted first.
func (ix *Index) Add(path, mode string, oid object.Hash, size uint32, stat FileStat) {
	normalized := filepath.ToSlash(path)

	keep := ix.entries[:0]
	for _, e := range ix.entries {
		switch {
		case e.Path == normalized:
			continue
		case strings.HasPrefix(normalized, e.Path+"/"):
			// e.Path just became a directory on the way to normalized.
			continue
		case strings.HasPrefix(e.Path, normalized+"/"):
			// normalized just became a file shadowing e.Path's directory.
			continue
		}
		keep = append(keep, e)
	}
	if evicted := len(ix.entries) - len(keep); evicted > 0 {
		ix.logger.Debug("evicted colliding index entries",
			zap.String("path", normalized), zap.Int("evicted", evicted))
	}

	ix.entries = append(keep, IndexEntry{
		Path: normalized,
		Mode: mode,
		OID:  oid,
		Size: size,
		Stat: stat,
	})
}

// IsEmpty reports whether nothing is staged.
func (ix *Index) IsEmpty() bool { return len(ix.entries) == 0 }

// Entries returns a path-sorted snapshot. Mutating the index afterwards
// does not change the returned slice.
func (ix *Index) Entries() []IndexEntry {
	out := append([]IndexEntry(nil), ix.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ---------------------------------------------------------------------------
// Binary codec
// ---------------------------------------------------------------------------

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// entryPaddedLen returns the on-disk length of one entry: the fixed block,
// the name, its NUL terminator, rounded up to a multiple of 8.
func entryPaddedLen(nameLen int) int {
	l := entryFixedSize + nameLen + 1
	if rem := l % 8; rem != 0 {
		l += 8 - rem
	}
	return l
}

// encodeIndex serializes entries (already sorted) and appends the SHA-1
// checksum over every preceding byte.
func encodeIndex(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(indexSignature)
	putUint32(&buf, indexVersion)
	putUint32(&buf, uint32(len(entries)))

	for _, e := range entries {
		modeBits, err := strconv.ParseUint(e.Mode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("entry %q: bad mode %q", e.Path, e.Mode)
		}
		raw, err := e.OID.Raw()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Path, err)
		}

		putUint32(&buf, e.Stat.CtimeSec)
		putUint32(&buf, e.Stat.CtimeNsec)
		putUint32(&buf, e.Stat.MtimeSec)
		putUint32(&buf, e.Stat.MtimeNsec)
		putUint32(&buf, e.Stat.Dev)
		putUint32(&buf, e.Stat.Ino)
		putUint32(&buf, uint32(modeBits))
		putUint32(&buf, e.Stat.UID)
		putUint32(&buf, e.Stat.GID)
		putUint32(&buf, e.Size)
		buf.Write(raw)

		flags := len(e.Path)
		if flags > maxPathFlagLen {
			flags = maxPathFlagLen
		}
		putUint16(&buf, uint16(flags))

		buf.WriteString(e.Path)
		buf.WriteByte(0)
		for pad := entryPaddedLen(len(e.Path)) - entryFixedSize - len(e.Path) - 1; pad > 0; pad-- {
			buf.WriteByte(0)
		}
	}

	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

// decodeIndex parses a persisted index. A non-empty warn return means the
// bytes were corrupt and the result is the lenient recovery: nil for
// header/checksum damage, the parsed prefix for a truncated entry stream.
func decodeIndex(data []byte) (entries []IndexEntry, warn string) {
	if len(data) < indexHeaderSize+sha1.Size {
		return nil, "file too small"
	}

	content := data[:len(data)-sha1.Size]
	sum := sha1.Sum(content)
	if !bytes.Equal(sum[:], data[len(data)-sha1.Size:]) {
		return nil, "checksum mismatch"
	}
	if string(content[:4]) != indexSignature {
		return nil, fmt.Sprintf("bad signature %q", content[:4])
	}
	version := binary.BigEndian.Uint32(content[4:8])
	switch version {
	case 2, 3, 4:
	default:
		return nil, fmt.Sprintf("unsupported version %d", version)
	}
	count := binary.BigEndian.Uint32(content[8:12])

	entries = make([]IndexEntry, 0, count)
	pos := indexHeaderSize
	for i := uint32(0); i < count; i++ {
		if pos+entryFixedSize > len(content) {
			return entries, "truncated entry stream"
		}
		fixed := content[pos : pos+entryFixedSize]

		stat := FileStat{
			CtimeSec:  binary.BigEndian.Uint32(fixed[0:4]),
			CtimeNsec: binary.BigEndian.Uint32(fixed[4:8]),
			MtimeSec:  binary.BigEndian.Uint32(fixed[8:12]),
			MtimeNsec: binary.BigEndian.Uint32(fixed[12:16]),
			Dev:       binary.BigEndian.Uint32(fixed[16:20]),
			Ino:       binary.BigEndian.Uint32(fixed[20:24]),
			UID:       binary.BigEndian.Uint32(fixed[28:32]),
			GID:       binary.BigEndian.Uint32(fixed[32:36]),
		}
		modeBits := binary.BigEndian.Uint32(fixed[24:28])
		size := binary.BigEndian.Uint32(fixed[36:40])
		oid, err := object.HashFromRaw(fixed[40:60])
		if err != nil {
			return entries, "malformed entry digest"
		}
		flags := binary.BigEndian.Uint16(fixed[60:62])
		nameLen := int(flags & maxPathFlagLen)

		var name string
		if nameLen < maxPathFlagLen {
			if pos+entryFixedSize+nameLen > len(content) {
				return entries, "truncated entry name"
			}
			name = string(content[pos+entryFixedSize : pos+entryFixedSize+nameLen])
		} else {
			// Sentinel: the real name is longer than the flags can say.
			nul := bytes.IndexByte(content[pos+entryFixedSize:], 0)
			if nul < 0 {
				return entries, "unterminated entry name"
			}
			name = string(content[pos+entryFixedSize : pos+entryFixedSize+nul])
			nameLen = nul
		}

		entries = append(entries, IndexEntry{
			Path: name,
			Mode: strconv.FormatUint(uint64(modeBits), 8),
			OID:  oid,
			Size: size,
			Stat: stat,
		})
		pos += entryPaddedLen(nameLen)
	}
	return entries, ""
}
