package vectorindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// On-disk format: magic, format version, dimension, record count, then per
// record a length-prefixed chunk ID and the raw little-endian float32
// vector. Saves go through a temp file and rename so readers never observe
// a half-written artifact.
const (
	fileMagic     = "CAVX"
	formatVersion = uint16(1)
)

// Save writes the index to path. Concurrent saves are serialized.
func (ix *Index) Save(path string) error {
	ix.saveMu.Lock()
	defer ix.saveMu.Unlock()

	ix.mu.RLock()
	ids := make([]string, 0, len(ix.vectors))
	for id := range ix.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	records := make(map[string][]float32, len(ids))
	for _, id := range ids {
		vec := make([]float32, len(ix.vectors[id]))
		copy(vec, ix.vectors[id])
		records[id] = vec
	}
	dim := ix.dim
	ix.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create vector file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := writeIndex(w, dim, ids, records); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write vector file: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("flush vector file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close vector file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace vector file: %w", err)
	}
	return nil
}

// Load replaces the index contents with the records persisted at path.
// A missing or undecodable file leaves the index empty and returns an
// error wrapping ErrCorruptFile (or os.ErrNotExist); callers fall back to
// an empty index and schedule a rebuild.
func (ix *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	dim, vectors, err := readIndex(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptFile, filepath.Base(path), err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = dim
	ix.vectors = vectors
	return nil
}

func writeIndex(w io.Writer, dim int, ids []string, records map[string][]float32) error {
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	header := []interface{}{
		formatVersion,
		uint32(dim),
		uint32(len(ids)),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for _, id := range ids {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(id))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(id)); err != nil {
			return err
		}
		for _, val := range records[id] {
			if err := binary.Write(w, binary.LittleEndian, math.Float32bits(val)); err != nil {
				return err
			}
		}
	}
	return nil
}

func readIndex(r io.Reader) (int, map[string][]float32, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, nil, err
	}
	if string(magic) != fileMagic {
		return 0, nil, fmt.Errorf("bad magic %q", magic)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, nil, err
	}
	if version != formatVersion {
		return 0, nil, fmt.Errorf("unsupported format version %d", version)
	}

	var dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, nil, err
	}

	vectors := make(map[string][]float32, count)
	for i := uint32(0); i < count; i++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return 0, nil, err
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return 0, nil, err
		}

		vec := make([]float32, dim)
		for j := range vec {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return 0, nil, err
			}
			vec[j] = math.Float32frombits(bits)
		}
		vectors[string(idBytes)] = vec
	}

	return int(dim), vectors, nil
}
