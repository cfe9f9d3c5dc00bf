package sandbox

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
)

// teardown releases the record's block and removes the record. Both
// happen together so a released block never stays attached to a record.
// The caller holds the lock and saves afterwards.
func (m *Manager) teardown(rec *registry.Record) {
	if err := m.blocks.Release(rec.BlockNum); err != nil {
		logging.Warn("failed to release block", "id", rec.ID, "block", rec.BlockNum, "error", err)
	}
	m.registry.Remove(rec.ID)
}

// Cleanup removes every sandbox whose process no longer answers the
// liveness probe and releases its block. Records without a pid are left
// alone. Running it again without new exits removes nothing.
func (m *Manager) Cleanup(ctx context.Context) (*CleanupReport, error) {
	unlock, err := m.begin()
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := &CleanupReport{Checked: m.registry.Len(), Removed: []*Summary{}}

	for _, rec := range m.registry.List() {
		proc := health.Observe(m.rt, rec.PID)
		if !proc.Stale() {
			continue
		}
		logging.Debug("reaping stale sandbox", "id", rec.ID, "name", rec.Name, "pid", rec.PID)
		m.teardown(rec)
		report.Removed = append(report.Removed, newSummary(rec, proc))
		m.record(audit.EventCleanup, rec, fmt.Sprintf("process %d exited, block=%d released", rec.PID, rec.BlockNum))
	}

	if len(report.Removed) > 0 {
		m.save()
	}
	logging.Info("cleanup complete", "checked", report.Checked, "removed", len(report.Removed))
	return report, nil
}

// CollectGarbage reconciles the pool markers with the registry. Markers no
// record owns are released, and records whose marker has gone missing get
// it back so their block cannot be handed out twice. With dryRun nothing
// is changed.
func (m *Manager) CollectGarbage(ctx context.Context, dryRun bool) (*GCReport, error) {
	unlock, err := m.begin()
	if err != nil {
		return nil, err
	}
	defer unlock()

	claimed, err := m.blocks.Claimed()
	if err != nil {
		return nil, err
	}
	owners := m.registry.BlockOwners()
	report := &GCReport{DryRun: dryRun, Orphans: []OrphanBlock{}, Restored: []*Summary{}}

	for _, block := range claimed {
		if _, owned := owners[block]; owned {
			continue
		}
		label, _ := m.blocks.Label(block)
		report.Orphans = append(report.Orphans, OrphanBlock{Block: block, Label: label})
		if dryRun {
			continue
		}
		if err := m.blocks.Release(block); err != nil {
			logging.Warn("failed to release orphaned block", "block", block, "error", err)
			continue
		}
		logging.Debug("released orphaned block", "block", block, "label", label)
	}

	for _, rec := range m.registry.List() {
		if m.blocks.IsClaimed(rec.BlockNum) {
			continue
		}
		if !dryRun {
			if err := m.blocks.Claim(rec.BlockNum, rec.Name); err != nil {
				logging.Warn("failed to restore block marker", "id", rec.ID, "block", rec.BlockNum, "error", err)
				continue
			}
			m.record(audit.EventGC, rec, fmt.Sprintf("restored marker for block=%d", rec.BlockNum))
		}
		report.Restored = append(report.Restored, m.summarize(rec))
	}

	logging.Info("garbage collection complete", "dryRun", dryRun, "orphans", len(report.Orphans), "restored", len(report.Restored))
	return report, nil
}
