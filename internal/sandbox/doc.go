// Package sandbox provides sandbox lifecycle management for forage-ns.
//
// A Manager ties together the registry, the address pool and the process
// runtime. Those three resources have no transactional relationship, so
// every operation runs inside one critical section: the registry lock is
// taken, the registry is reloaded from disk, the operation runs, and the
// registry is saved if it changed.
//
//	mgr, err := sandbox.NewManager(sandbox.Config{
//	    Paths:   paths,
//	    Pool:    pool,
//	    Runtime: runtime.NewNamespaceRuntime("forage-sandbox", "nsenter", nil),
//	})
//
//	sb, err := mgr.Create(ctx, sandbox.CreateOptions{Name: "web"})
//	res, err := mgr.Exec(ctx, "web", sandbox.ExecOptions{Command: []string{"ls"}})
//	_, found, err := mgr.Delete(ctx, sb.ID)
//
// # Creation Flow
//
// Manager.Create:
//  1. Validates the name and environment
//  2. Reserves the next index and resolves the workspace
//  3. Claims the lowest free address block
//  4. Spawns the sandbox process with the block's network
//  5. Inserts and saves the record
//
// A failure after the block is claimed releases it, so a failed create
// leaves neither a record nor a marker.
//
// # Lookups
//
// References are resolved by exact id, then numeric index, then exact
// name. Get, Delete and IPByIndex report a missing sandbox through their
// bool result; Exec and Shell return ErrSandboxNotFound.
//
// # Reaping
//
// Cleanup removes records whose process no longer answers the liveness
// probe. CollectGarbage reconciles pool markers with the registry after a
// crash.
package sandbox
