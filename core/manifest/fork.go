package manifest

import (
	"time"

	"github.com/agenthub-dev/agenthub/core/identity"
)

// EnsureAgentID derives and sets the manifest's agent id when absent. The
// derivation is deterministic, so re-registering the same author/name pair
// yields the same id.
func EnsureAgentID(m *Manifest) error {
	if m.AgentID != "" {
		return nil
	}
	id, err := identity.DeriveID(m.Author, m.Name, "")
	if err != nil {
		return err
	}
	m.AgentID = id
	return nil
}

// Fork derives a child manifest from a parent. The child takes the fork name
// as its own name, records the parent in its lineage and starts unsigned: a
// fork is a new document whose author has not yet made any claim over it.
func Fork(parent Manifest, forkName, newAuthor string, now time.Time) (Manifest, error) {
	parentID := parent.AgentID
	if parentID == "" {
		derived, err := identity.DeriveID(parent.Author, parent.Name, "")
		if err != nil {
			return Manifest{}, err
		}
		parentID = derived
	}
	childID, lineage, err := identity.ForkLineage(parentID, parent.Generation, parent.Lineage, forkName, newAuthor)
	if err != nil {
		return Manifest{}, err
	}

	child := parent.Clone()
	child.Name = forkName
	child.Author = newAuthor
	child.AgentID = childID
	child.ParentID = lineage.ParentID
	child.Generation = lineage.Generation
	child.Lineage = lineage.Chain
	child.LifecycleState = StateActive
	child.CreatedAt = now.UTC().Format(time.RFC3339)
	child.UpdatedAt = child.CreatedAt
	child.Signature = nil
	child.Attestations = nil
	return child, nil
}
