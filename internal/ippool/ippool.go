package ippool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
)

const markerPrefix = "block-"

// Allocator hands out address blocks by claiming marker files in Dir.
type Allocator struct {
	Dir     string
	Ceiling int
}

// New returns an allocator over dir with blocks [0, ceiling).
func New(dir string, ceiling int) *Allocator {
	return &Allocator{Dir: dir, Ceiling: ceiling}
}

func (a *Allocator) markerPath(block int) string {
	return filepath.Join(a.Dir, markerPrefix+strconv.Itoa(block))
}

// Allocate claims the lowest free block and tags its marker with label.
// The claim is an exclusive create, so two allocators scanning the same
// directory never both win a block.
func (a *Allocator) Allocate(label string) (int, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create pool directory: %w", err)
	}

	for block := 0; block < a.Ceiling; block++ {
		claimed, err := a.claim(block, label)
		if err != nil {
			return 0, err
		}
		if claimed {
			return block, nil
		}
	}

	return 0, errors.PoolExhausted(a.Ceiling)
}

// Claim takes a specific block, failing if it is already claimed.
func (a *Allocator) Claim(block int, label string) error {
	if block < 0 || block >= a.Ceiling {
		return fmt.Errorf("block %d outside pool of %d blocks", block, a.Ceiling)
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create pool directory: %w", err)
	}
	claimed, err := a.claim(block, label)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("block %d is already claimed", block)
	}
	return nil
}

func (a *Allocator) claim(block int, label string) (bool, error) {
	path := a.markerPath(block)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim block %d: %w", block, err)
	}

	_, werr := f.WriteString(label + "\n")
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return false, fmt.Errorf("failed to tag block %d: %w", block, werr)
	}
	return true, nil
}

// Release frees a block. Releasing a free block is not an error.
func (a *Allocator) Release(block int) error {
	if err := os.Remove(a.markerPath(block)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release block %d: %w", block, err)
	}
	return nil
}

// IsClaimed reports whether a marker exists for block.
func (a *Allocator) IsClaimed(block int) bool {
	_, err := os.Stat(a.markerPath(block))
	return err == nil
}

// Label returns the tag written when block was claimed.
func (a *Allocator) Label(block int) (string, error) {
	data, err := os.ReadFile(a.markerPath(block))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Claimed lists every claimed block in ascending order. Files that do not
// look like markers are ignored.
func (a *Allocator) Claimed() ([]int, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pool directory: %w", err)
	}

	var blocks []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, markerPrefix) {
			continue
		}
		block, err := strconv.Atoi(strings.TrimPrefix(name, markerPrefix))
		if err != nil || block < 0 {
			continue
		}
		blocks = append(blocks, block)
	}
	sort.Ints(blocks)
	return blocks, nil
}
