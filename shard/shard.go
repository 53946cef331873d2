// Package shard names, validates and merges the per-batch access log files
// written by fetch.
package shard

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/ChenxingLi/evm-io-tracker/codec"
	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"golang.org/x/exp/slices"
)

var namePattern = regexp.MustCompile(`^(\d+)_(\d+)\.trace$`)

// Shard is one file covering blocks [Start, Start+Len).
type Shard struct {
	Path  string
	Start uint64
	Len   uint64
}

func (s Shard) End() uint64 { return s.Start + s.Len }

func (s Shard) String() string {
	return fmt.Sprintf("%s [%d, %d)", filepath.Base(s.Path), s.Start, s.End())
}

// Name returns the file name for a shard starting at start.
func Name(start uint64, length int) string {
	return fmt.Sprintf("%d_%d.trace", start, length)
}

// ParseName reads the range encoded in a shard file name.
func ParseName(name string) (Shard, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Shard{}, fmt.Errorf("%w: %s", ioerrors.ErrMalformedShardName, name)
	}
	start, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Shard{}, fmt.Errorf("%w: %s: %v", ioerrors.ErrMalformedShardName, name, err)
	}
	length, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Shard{}, fmt.Errorf("%w: %s: %v", ioerrors.ErrMalformedShardName, name, err)
	}
	return Shard{Path: name, Start: start, Len: length}, nil
}

// Write stores a fetched batch as <start>_<len>.trace in dir.
func Write(dir string, start uint64, blocks types.FullAccessLog) (string, error) {
	path := filepath.Join(dir, Name(start, len(blocks)))
	if err := codec.WriteFile(path, codec.KindAccessLog, blocks); err != nil {
		return "", err
	}
	return path, nil
}

// Range selects blocks; a nil bound is open.
type Range struct {
	Start *uint64 // inclusive
	End   *uint64 // exclusive
}

func (r Range) overlaps(s Shard) bool {
	if r.Start != nil && s.End() <= *r.Start {
		return false
	}
	if r.End != nil && s.Start >= *r.End {
		return false
	}
	return true
}

func (r Range) contains(block uint64) bool {
	if r.Start != nil && block < *r.Start {
		return false
	}
	if r.End != nil && block >= *r.End {
		return false
	}
	return true
}

// Scan lists the shards in dir that overlap r, sorted by start block. Files
// that do not look like shards are ignored.
func Scan(dir string, r Range) ([]Shard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var shards []Shard
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		s, err := ParseName(e.Name())
		if err != nil {
			continue
		}
		if !r.overlaps(s) {
			continue
		}
		s.Path = filepath.Join(dir, e.Name())
		shards = append(shards, s)
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: in %s", ioerrors.ErrNoShardsFound, dir)
	}
	slices.SortFunc(shards, func(a, b Shard) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return shards, nil
}

// CheckContiguous requires every shard to start where the previous one ends.
func CheckContiguous(shards []Shard) error {
	for i := 0; i+1 < len(shards); i++ {
		if shards[i].End() != shards[i+1].Start {
			return fmt.Errorf("%w: %s -> %s", ioerrors.ErrShardContiguityViolation, shards[i], shards[i+1])
		}
	}
	return nil
}

// Load concatenates the blocks of contiguous shards that fall inside r. It
// returns the first block number kept.
func Load(shards []Shard, r Range) (uint64, types.FullAccessLog, error) {
	if err := CheckContiguous(shards); err != nil {
		return 0, nil, err
	}
	// the output starts at the first block actually present
	first := shards[0].Start
	if r.Start != nil && *r.Start > first {
		first = *r.Start
	}
	if r.Start != nil && *r.Start < shards[0].Start {
		log.Warn(log.ShardMonitoring, "Requested start precedes the first shard", "start", *r.Start, "first", shards[0].Start)
	}
	var combined types.FullAccessLog
	for _, s := range shards {
		var blocks types.FullAccessLog
		if err := codec.ReadFile(s.Path, codec.KindAccessLog, &blocks); err != nil {
			return 0, nil, err
		}
		if uint64(len(blocks)) != s.Len {
			return 0, nil, fmt.Errorf("%w: %s holds %d blocks", ioerrors.ErrShardContiguityViolation, s, len(blocks))
		}
		for i, block := range blocks {
			if r.contains(s.Start + uint64(i)) {
				combined = append(combined, block)
			}
		}
		log.Debug(log.ShardMonitoring, "Shard loaded", "shard", s, "blocks", len(blocks))
	}
	return first, combined, nil
}

// Combine merges the shards of dataDir overlapping r into
// combined_<start>_<count>.trace in outDir and returns its path.
func Combine(dataDir, outDir string, r Range) (string, int, error) {
	shards, err := Scan(dataDir, r)
	if err != nil {
		return "", 0, err
	}
	first, combined, err := Load(shards, r)
	if err != nil {
		return "", 0, err
	}
	path := filepath.Join(outDir, fmt.Sprintf("combined_%d_%d.trace", first, len(combined)))
	if err := codec.WriteFile(path, codec.KindAccessLog, combined); err != nil {
		return "", 0, err
	}
	log.Info(log.ShardMonitoring, "Shards combined", "shards", len(shards), "blocks", len(combined), "out", path)
	return path, len(combined), nil
}
