package identity

import (
	"fmt"
	"strings"
)

// Lineage is the ordered chain of ancestor ids, oldest first. It excludes
// the manifest's own id, so its length always equals the generation number.
type Lineage struct {
	ParentID   string
	Generation int
	Chain      []string
}

// ForkLineage derives the identity fields for a fork. The child takes the
// fork name as its own name, so the derived id carries no fork suffix.
func ForkLineage(parentID string, parentGeneration int, parentChain []string, forkName, newAuthor string) (string, Lineage, error) {
	childID, err := DeriveID(newAuthor, forkName, "")
	if err != nil {
		return "", Lineage{}, err
	}
	chain := make([]string, 0, len(parentChain)+1)
	chain = append(chain, parentChain...)
	chain = append(chain, parentID)
	return childID, Lineage{
		ParentID:   parentID,
		Generation: parentGeneration + 1,
		Chain:      chain,
	}, nil
}

// FormatLineageTree renders a lineage chain plus the current id as an ASCII
// tree, oldest ancestor first.
func FormatLineageTree(chain []string, current string, versions map[string]string) string {
	ids := make([]string, 0, len(chain)+1)
	ids = append(ids, chain...)
	if current != "" {
		ids = append(ids, current)
	}
	if len(ids) == 0 {
		return "[no lineage data]"
	}
	lines := make([]string, 0, len(ids))
	for i, id := range ids {
		indent := strings.Repeat("  ", i)
		prefix := ""
		if i > 0 {
			prefix = "'-- "
		}
		versionLabel := ""
		if version, ok := versions[id]; ok {
			versionLabel = fmt.Sprintf(" (v%s)", version)
		}
		originLabel := ""
		if i == 0 {
			originLabel = " [ORIGINAL]"
		}
		lines = append(lines, indent+prefix+id+versionLabel+originLabel)
	}
	return strings.Join(lines, "\n")
}
