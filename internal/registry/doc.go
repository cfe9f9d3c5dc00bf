// Package registry is the durable catalog of sandbox records.
//
// Records live in one JSON file (sandboxes.json by default):
//
//	{
//	  "version": 1,
//	  "updated": "2026-01-02T15:04:05Z",
//	  "nextIndex": 3,
//	  "sandboxes": [ { "id": "...", "index": 0, ... } ]
//	}
//
// A bare JSON array of records is also accepted on load.
//
// The file is reloaded before every operation and rewritten atomically
// (temporary file, fsync, rename) after every mutation. Callers wrap the
// load, mutate and save cycle in Lock, which combines an in-process mutex
// with an flock on a sibling lock file so concurrent processes cannot
// interleave their cycles.
//
// nextIndex is a high-water mark: a freshly loaded registry hands out an
// index greater than every index the file has ever recorded.
package registry
