package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest identifies cached validation results: контент буфера плюс
// отпечаток реестра команд плюс настройки валидатора.
type Digest [32]byte

// DiskCache хранит результаты валидации по дайджесту на диске, чтобы
// повторный прогон по неизменённым файлам не стоил ничего.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachedDiagnostic is the serialized form of one diagnostic.
type cachedDiagnostic struct {
	Severity  uint8
	Kind      uint16
	Line      uint32
	Col       uint32
	Message   string
	Suggested string
}

// DiskPayload stores cached validation results for fast re-runs.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	ContentHash Digest
	Registry    Digest

	Diagnostics []cachedDiagnostic
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// CacheKey derives the cache digest for a snapshot validated against a
// registry fingerprint with the given namespace and diagnostic cap.
func CacheKey(snap source.Snapshot, registry [32]byte, namespace string, maxDiagnostics int) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	h.Write(schema[:])
	content := snap.Hash()
	h.Write(content[:])
	h.Write(registry[:])
	h.Write([]byte(namespace))
	var limit [4]byte
	binary.LittleEndian.PutUint32(limit[:], uint32(maxDiagnostics)) // #nosec G115 -- limit is validated small
	h.Write(limit[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "runs".
	return filepath.Join(c.dir, "runs", hexKey+".mp")
}

// Put serializes and writes the diagnostics of one run to the disk cache.
func (c *DiskCache) Put(key Digest, snap source.Snapshot, registry [32]byte, ds []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		ContentHash: Digest(snap.Hash()),
		Registry:    Digest(registry),
		Diagnostics: make([]cachedDiagnostic, len(ds)),
	}
	for i, d := range ds {
		payload.Diagnostics[i] = cachedDiagnostic{
			Severity:  uint8(d.Severity),
			Kind:      uint16(d.Kind),
			Line:      d.Pos.Line,
			Col:       d.Pos.Col,
			Message:   d.Message,
			Suggested: d.Suggested,
		}
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", err)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads the cached diagnostics for key. Payloads from an older schema
// or a different registry fingerprint count as a miss.
func (c *DiskCache) Get(key Digest, registry [32]byte) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p) // #nosec G304 -- path derived from digest
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()

	var payload DiskPayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Registry != Digest(registry) {
		return nil, false, nil
	}

	ds := make([]diag.Diagnostic, len(payload.Diagnostics))
	for i, cd := range payload.Diagnostics {
		ds[i] = diag.Diagnostic{
			Severity:  diag.Severity(cd.Severity),
			Kind:      diag.Kind(cd.Kind),
			Pos:       source.LineCol{Line: cd.Line, Col: cd.Col},
			Message:   cd.Message,
			Suggested: cd.Suggested,
		}
	}
	return ds, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим в фоне
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
