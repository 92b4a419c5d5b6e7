package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/internal/telemetry/log"
	"github.com/cuemby/chainkv/pkg/config"
	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
	"github.com/cuemby/chainkv/pkg/store/badgerdb"
	"github.com/cuemby/chainkv/pkg/store/journal"
	"github.com/cuemby/chainkv/pkg/store/lru"
	"github.com/cuemby/chainkv/pkg/store/metering"
	"github.com/cuemby/chainkv/pkg/store/rootkeyview"
	"github.com/cuemby/chainkv/pkg/store/splitting"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Store is the handle OpenShared/OpenExclusive return: the full
// layered kv.Store plus a Close releasing the namespace's advisory
// exclusivity bookkeeping. kv.Store itself carries no lifecycle
// method (spec §9: Stores are thin, non-owning handles); Close exists
// purely so the façade can track outstanding exclusive opens.
type Store struct {
	kv.Store
	release func()
	closed  bool
	mu      sync.Mutex
}

// Close releases this handle's claim on its root key, if any. It is
// safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.release != nil {
		s.release()
	}
	return nil
}

// namespaceHandle bundles one namespace's physical resources.
type namespaceHandle struct {
	backend *badgerdb.Backend
	meta    *metaIndex
}

// Database is the façade spec §4.2 describes: namespace lifecycle,
// Store opens, list_root_keys.
type Database struct {
	cfg config.Config

	mu         sync.Mutex
	namespaces map[string]*namespaceHandle

	// exclusivity tracks, per (namespace, root key), whether a handle
	// is outstanding and in which mode. Advisory and in-process only,
	// per spec §5.
	exclusivity map[string]map[string]string // namespace -> rootKeyHex -> "shared"|"exclusive"
}

// Connect opens (or prepares to open) a Database rooted at cfg.Path.
func Connect(cfg config.Config) (*Database, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("connect: create root dir %q: %w", cfg.Path, err)
	}
	return &Database{
		cfg:         cfg,
		namespaces:  make(map[string]*namespaceHandle),
		exclusivity: make(map[string]map[string]string),
	}, nil
}

func validateNamespace(namespace string) error {
	if !namespacePattern.MatchString(namespace) {
		return fmt.Errorf("namespace %q: %w", namespace, kverr.ErrInvalidNamespace)
	}
	return nil
}

func (d *Database) namespaceDir(namespace string) string {
	return filepath.Join(d.cfg.Path, namespace)
}

// Exists reports whether namespace has been created.
func (d *Database) Exists(namespace string) (bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return false, err
	}
	info, err := os.Stat(d.namespaceDir(namespace))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", namespace, err)
	}
	return info.IsDir(), nil
}

// Create creates namespace's on-disk directory. It is an error to
// create a namespace that already exists.
func (d *Database) Create(namespace string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	exists, err := d.Exists(namespace)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create %q: %w", namespace, kverr.ErrStoreAlreadyExists)
	}
	if err := os.MkdirAll(d.namespaceDir(namespace), 0o755); err != nil {
		return fmt.Errorf("create %q: %w", namespace, err)
	}
	log.WithNamespace(namespace).Info().Msg("namespace created")
	return nil
}

// Delete removes namespace's on-disk directory and any open handle to
// it. It is not an error to delete a namespace with no outstanding
// handles that does not exist.
func (d *Database) Delete(namespace string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	d.mu.Lock()
	if handle, ok := d.namespaces[namespace]; ok {
		_ = handle.backend.Close()
		_ = handle.meta.Close()
		delete(d.namespaces, namespace)
	}
	delete(d.exclusivity, namespace)
	d.mu.Unlock()

	if err := os.RemoveAll(d.namespaceDir(namespace)); err != nil {
		return fmt.Errorf("delete %q: %w", namespace, err)
	}
	return nil
}

// DeleteAll removes every namespace under this Database's path.
func (d *Database) DeleteAll() error {
	namespaces, err := d.ListAll()
	if err != nil {
		return err
	}
	for _, namespace := range namespaces {
		if err := d.Delete(namespace); err != nil {
			return err
		}
	}
	return nil
}

// ListAll lists every namespace created under this Database's path.
func (d *Database) ListAll() ([]string, error) {
	entries, err := os.ReadDir(d.cfg.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	var namespaces []string
	for _, entry := range entries {
		if entry.IsDir() {
			namespaces = append(namespaces, entry.Name())
		}
	}
	return namespaces, nil
}

// ListRootKeys enumerates every root key that has taken a first write
// within namespace.
func (d *Database) ListRootKeys(namespace string) ([][]byte, error) {
	handle, err := d.openNamespace(namespace)
	if err != nil {
		return nil, err
	}
	return handle.meta.ListRootKeys()
}

func (d *Database) openNamespace(namespace string) (*namespaceHandle, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if handle, ok := d.namespaces[namespace]; ok {
		return handle, nil
	}

	dir := d.namespaceDir(namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open namespace %q: %w", namespace, err)
	}

	backend, err := badgerdb.New(d.cfg.BackendOptions(filepath.Join(dir, "badger")))
	if err != nil {
		metrics.RecordBackendOpen(false, err.Error())
		return nil, fmt.Errorf("open namespace %q: %w", namespace, err)
	}
	meta, err := openMetaIndex(filepath.Join(dir, "meta.bolt"))
	if err != nil {
		_ = backend.Close()
		metrics.RecordBackendOpen(false, err.Error())
		return nil, fmt.Errorf("open namespace %q: %w", namespace, err)
	}

	handle := &namespaceHandle{backend: backend, meta: meta}
	d.namespaces[namespace] = handle
	metrics.RecordBackendOpen(true, "")
	return handle, nil
}

const (
	modeShared    = "shared"
	modeExclusive = "exclusive"
)

// OpenShared opens rootKey in namespace for shared access: other
// handles may coexist, but the journaling slow path is disabled (spec
// §4.2, §3 invariant 4).
func (d *Database) OpenShared(ctx context.Context, namespace string, rootKey []byte) (*Store, error) {
	return d.open(ctx, namespace, rootKey, false)
}

// OpenExclusive opens rootKey in namespace asserting sole-writer
// status, enabling the journaling slow path.
func (d *Database) OpenExclusive(ctx context.Context, namespace string, rootKey []byte) (*Store, error) {
	return d.open(ctx, namespace, rootKey, true)
}

func (d *Database) open(ctx context.Context, namespace string, rootKey []byte, exclusive bool) (*Store, error) {
	handle, err := d.openNamespace(namespace)
	if err != nil {
		return nil, err
	}

	rootKeyHex := fmt.Sprintf("%x", rootKey)
	release, err := d.claim(namespace, rootKeyHex, exclusive)
	if err != nil {
		return nil, err
	}

	metrics.OpenStoresGauge.WithLabelValues(namespace, modeLabel(exclusive)).Inc()

	view := rootkeyview.New(handle.backend, namespace, rootKey, handle.meta)
	split := splitting.New(view)
	journaled := journal.New(split, exclusive, namespace)
	metered := metering.New(journaled, badgerdb.BackendKind)
	cached := lru.New(metered, lru.Config{CacheEntries: d.cfg.CacheEntries, CacheBytes: d.cfg.CacheBytes})

	if err := cached.ClearJournal(ctx); err != nil {
		release()
		metrics.OpenStoresGauge.WithLabelValues(namespace, modeLabel(exclusive)).Dec()
		return nil, fmt.Errorf("open store: clear journal: %w", err)
	}

	store := &Store{
		Store: cached,
		release: func() {
			release()
			metrics.OpenStoresGauge.WithLabelValues(namespace, modeLabel(exclusive)).Dec()
		},
	}
	return store, nil
}

func modeLabel(exclusive bool) string {
	if exclusive {
		return modeExclusive
	}
	return modeShared
}

// claim registers an in-process advisory claim on (namespace,
// rootKeyHex) per spec §5: exclusive opens must not coexist with any
// other handle (shared or exclusive) to the same root key.
func (d *Database) claim(namespace, rootKeyHex string, exclusive bool) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	claims, ok := d.exclusivity[namespace]
	if !ok {
		claims = make(map[string]string)
		d.exclusivity[namespace] = claims
	}

	if existing, held := claims[rootKeyHex]; held {
		if exclusive || existing == modeExclusive {
			return nil, fmt.Errorf("open store: root key already held %s: %w", existing, kverr.ErrStoreAlreadyExists)
		}
	}
	claims[rootKeyHex] = modeLabel(exclusive)

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if claims, ok := d.exclusivity[namespace]; ok {
			delete(claims, rootKeyHex)
		}
	}, nil
}
