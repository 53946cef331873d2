package storage

import (
	"fmt"

	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

// Options tunes the LevelDB instance the workload is replayed against.
type Options struct {
	CacheMB    int  // block cache, 0 keeps the LevelDB default
	BloomBits  int  // bits per key for the bloom filter, 0 disables it
	SyncWrites bool // fsync every write batch
}

// PersistenceStore is the key/value store a workload is replayed against.
// Keys are storage key digests and values 32-byte words.
type PersistenceStore struct {
	db    *leveldb.DB
	write *opt.WriteOptions
}

// NewPersistenceStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func NewPersistenceStore(path string, o *Options) (*PersistenceStore, error) {
	if o == nil {
		o = &Options{}
	}
	dbOpts := &opt.Options{}
	if o.CacheMB > 0 {
		dbOpts.BlockCacheCapacity = o.CacheMB * opt.MiB
	}
	if o.BloomBits > 0 {
		dbOpts.Filter = filter.NewBloomFilter(o.BloomBits)
	}

	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), dbOpts)
	} else {
		db, err = leveldb.OpenFile(path, dbOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	return &PersistenceStore{db: db, write: &opt.WriteOptions{Sync: o.SyncWrites}}, nil
}

// NewMemoryPersistenceStore creates an in-memory PersistenceStore for testing.
func NewMemoryPersistenceStore() (*PersistenceStore, error) {
	return NewPersistenceStore("", nil)
}

// Get retrieves a value by key. Returns (nil, false, nil) if not found.
func (ps *PersistenceStore) Get(key common.Hash) ([]byte, bool, error) {
	data, err := ps.db.Get(key.Bytes(), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %x: %w", key, err)
	}
	return data, true, nil
}

func (ps *PersistenceStore) Put(key common.Hash, value [32]byte) error {
	return ps.db.Put(key.Bytes(), value[:], ps.write)
}

// Seed loads the initial state, batchSize entries per write batch.
func (ps *PersistenceStore) Seed(entries []types.InitialStateEntry, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 10000
	}
	batch := new(leveldb.Batch)
	for i := range entries {
		batch.Put(entries[i].Digest.Bytes(), entries[i].Value[:])
		if batch.Len() >= batchSize {
			if err := ps.db.Write(batch, ps.write); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Len() > 0 {
		if err := ps.db.Write(batch, ps.write); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// ApplyResult counts what one block's workload did against the store.
type ApplyResult struct {
	Reads  int
	Hits   int
	Writes int
}

// Apply replays one block: every read is a point lookup, then all writes go
// out in a single batch.
func (ps *PersistenceStore) Apply(tasks types.BlockWorkload) (ApplyResult, error) {
	var res ApplyResult
	batch := new(leveldb.Batch)
	for i := range tasks {
		t := &tasks[i]
		switch t.Kind {
		case types.TaskRead:
			_, found, err := ps.Get(t.Digest)
			if err != nil {
				return res, err
			}
			res.Reads++
			if found {
				res.Hits++
			}
		case types.TaskWrite:
			batch.Put(t.Digest.Bytes(), t.Value[:])
			res.Writes++
		}
	}
	if batch.Len() > 0 {
		if err := ps.db.Write(batch, ps.write); err != nil {
			return res, fmt.Errorf("apply writes: %w", err)
		}
	}
	return res, nil
}

// Len counts the stored keys.
func (ps *PersistenceStore) Len() (int, error) {
	iter := ps.db.NewIterator(nil, nil)
	defer iter.Release()
	n := 0
	for iter.Next() {
		n++
	}
	return n, iter.Error()
}

func (ps *PersistenceStore) Close() error {
	return ps.db.Close()
}
