// Package ippool allocates sandbox address blocks.
//
// Each claimed block is a marker file named block-<n> in the pool
// directory. The marker holds the claiming sandbox's label for human
// debugging; allocation never reads it back.
//
//	block, err := pool.Allocate("sandbox-3")
//	defer pool.Release(block)
//
// # Allocation Strategy
//
// Allocate scans from block 0 on every call and claims the first block
// without a marker (first-fit), so freed blocks are reused before new ones.
// The cost is proportional to the number of claimed blocks, not the
// ceiling. When every block below the ceiling is claimed it returns an
// error matching errors.ErrPoolExhausted.
package ippool
