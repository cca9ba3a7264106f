package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/agenthub-dev/agenthub/core/canon"
)

// The signable payload is built from a fixed field list, never from the
// manifest's wire representation, so two field-wise equal manifests encode
// identically regardless of source key order or formatting. The signature
// block and any attestations are excluded: attestations are appended after
// the author signs and each carries its own independent signature.

// SignableBytes returns the canonical byte sequence an author signature
// covers.
func SignableBytes(m Manifest) ([]byte, error) {
	payload := map[string]any{
		"name":        m.Name,
		"version":     m.Version,
		"description": m.Description,
		"author":      m.Author,
		"generation":  m.Generation,
	}
	if len(m.Capabilities) > 0 {
		payload["capabilities"] = m.Capabilities
	}
	if len(m.Protocols) > 0 {
		payload["protocols"] = m.Protocols
	}
	if len(m.Permissions) > 0 {
		payload["permissions"] = m.Permissions
	}
	if m.LifecycleState != "" {
		payload["lifecycle_state"] = m.LifecycleState
	}
	if m.AgentID != "" {
		payload["agent_id"] = m.AgentID
	}
	if m.ParentID != "" {
		payload["parent_id"] = m.ParentID
	}
	if len(m.Lineage) > 0 {
		payload["lineage"] = m.Lineage
	}
	if m.CreatedAt != "" {
		payload["created_at"] = m.CreatedAt
	}
	if m.UpdatedAt != "" {
		payload["updated_at"] = m.UpdatedAt
	}
	return canonicalize(payload)
}

// AttestationSignableBytes returns the canonical byte sequence an
// attestation signature covers: every attestation field except the
// signature and public key.
func AttestationSignableBytes(a Attestation) ([]byte, error) {
	payload := map[string]any{
		"type":      a.Type,
		"verifier":  a.Verifier,
		"statement": a.Statement,
		"timestamp": a.Timestamp,
	}
	if a.VerifierID != "" {
		payload["verifier_id"] = a.VerifierID
	}
	if len(a.Metadata) > 0 {
		payload["metadata"] = a.Metadata
	}
	return canonicalize(payload)
}

func canonicalize(payload map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode signable payload: %w", err)
	}
	canonical, err := canon.Canonicalize(encoded)
	if err != nil {
		return nil, fmt.Errorf("canonicalize signable payload: %w", err)
	}
	return canonical, nil
}
