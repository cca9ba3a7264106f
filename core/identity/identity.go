package identity

import (
	"fmt"
	"strings"

	"github.com/agenthub-dev/agenthub/core/errors"
)

// Agent ids are pure functions of their inputs: ah:<author>/<name> for an
// original, ah:<author>/<name>+<fork> for a suffixed fork. The separators
// are reserved so every id parses unambiguously.
const Prefix = "ah:"

const reservedSeparators = ":/+"

type Parts struct {
	Author   string
	Name     string
	ForkName string
}

// DeriveID builds an agent id. Segments containing reserved separators are
// rejected rather than escaped.
func DeriveID(author, name, forkName string) (string, error) {
	if err := validateSegment("author", author); err != nil {
		return "", err
	}
	if err := validateSegment("name", name); err != nil {
		return "", err
	}
	id := Prefix + author + "/" + name
	if forkName != "" {
		if err := validateSegment("fork name", forkName); err != nil {
			return "", err
		}
		id += "+" + forkName
	}
	return id, nil
}

// ParseID splits an agent id into its components.
func ParseID(agentID string) (Parts, error) {
	if !strings.HasPrefix(agentID, Prefix) {
		return Parts{}, invalidID(agentID)
	}
	rest := agentID[len(Prefix):]

	forkName := ""
	if idx := strings.LastIndex(rest, "+"); idx >= 0 {
		rest, forkName = rest[:idx], rest[idx+1:]
		if forkName == "" {
			return Parts{}, invalidID(agentID)
		}
	}

	author, name, found := strings.Cut(rest, "/")
	if !found || author == "" || name == "" {
		return Parts{}, invalidID(agentID)
	}
	return Parts{Author: author, Name: name, ForkName: forkName}, nil
}

func validateSegment(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fmt.Sprintf("%s must not be empty", label), errors.CategoryInvalidInput, "invalid_identity", "")
	}
	if strings.ContainsAny(value, reservedSeparators) {
		return errors.New(
			fmt.Sprintf("%s contains a reserved separator (one of %q): %s", label, reservedSeparators, value),
			errors.CategoryInvalidInput, "invalid_identity", "identity segments may not contain ':', '/' or '+'")
	}
	return nil
}

func invalidID(agentID string) error {
	return errors.New(fmt.Sprintf("invalid agent id format: %s", agentID), errors.CategoryInvalidInput, "invalid_identity", "expected ah:<author>/<name>[+<fork>]")
}
