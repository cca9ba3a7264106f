package manifest

import "strings"

type LifecycleState string

const (
	StateActive     LifecycleState = "active"
	StateDeprecated LifecycleState = "deprecated"
	StateRetired    LifecycleState = "retired"
	StateRevoked    LifecycleState = "revoked"
)

func ParseLifecycleState(value string) (LifecycleState, bool) {
	switch LifecycleState(strings.ToLower(strings.TrimSpace(value))) {
	case StateActive:
		return StateActive, true
	case StateDeprecated:
		return StateDeprecated, true
	case StateRetired:
		return StateRetired, true
	case StateRevoked:
		return StateRevoked, true
	}
	return "", false
}

type Protocol string

const (
	ProtocolMCP    Protocol = "MCP"
	ProtocolA2A    Protocol = "A2A"
	ProtocolCustom Protocol = "custom"
)

// NormalizeProtocol maps protocol names case-insensitively; anything
// unrecognized becomes custom rather than failing the load.
func NormalizeProtocol(value string) Protocol {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MCP":
		return ProtocolMCP
	case "A2A":
		return ProtocolA2A
	default:
		return ProtocolCustom
	}
}

type AttestationType string

const (
	AttestationBuild    AttestationType = "build"
	AttestationTest     AttestationType = "test"
	AttestationSecurity AttestationType = "security"
	AttestationReview   AttestationType = "review"
	AttestationRegistry AttestationType = "registry"
	AttestationCustom   AttestationType = "custom"
)

func ParseAttestationType(value string) (AttestationType, bool) {
	switch AttestationType(strings.ToLower(strings.TrimSpace(value))) {
	case AttestationBuild:
		return AttestationBuild, true
	case AttestationTest:
		return AttestationTest, true
	case AttestationSecurity:
		return AttestationSecurity, true
	case AttestationReview:
		return AttestationReview, true
	case AttestationRegistry:
		return AttestationRegistry, true
	case AttestationCustom:
		return AttestationCustom, true
	}
	return "", false
}

// Signature is the author's signature block. A manifest is either unsigned
// (nil block) or carries all three fields; a partially populated block
// cannot be represented.
type Signature struct {
	Value     string `yaml:"signature" json:"signature"`
	PublicKey string `yaml:"public_key" json:"public_key"`
	SignedAt  string `yaml:"signed_at" json:"signed_at"`
}

// Attestation is a third-party signed claim about a manifest. Its signature
// covers every field except the signature and public key themselves.
type Attestation struct {
	Type       AttestationType   `yaml:"type" json:"type"`
	Verifier   string            `yaml:"verifier" json:"verifier"`
	VerifierID string            `yaml:"verifier_id,omitempty" json:"verifier_id,omitempty"`
	Statement  string            `yaml:"statement" json:"statement"`
	Timestamp  string            `yaml:"timestamp" json:"timestamp"`
	Metadata   map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Signature  string            `yaml:"signature,omitempty" json:"signature,omitempty"`
	PublicKey  string            `yaml:"public_key,omitempty" json:"public_key,omitempty"`
}

type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Author      string `yaml:"author" json:"author"`

	Capabilities []string   `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Protocols    []Protocol `yaml:"protocols,omitempty" json:"protocols,omitempty"`
	Permissions  []string   `yaml:"permissions,omitempty" json:"permissions,omitempty"`

	LifecycleState LifecycleState `yaml:"lifecycle_state,omitempty" json:"lifecycle_state,omitempty"`

	AgentID    string   `yaml:"agent_id,omitempty" json:"agent_id,omitempty"`
	ParentID   string   `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	Generation int      `yaml:"generation,omitempty" json:"generation"`
	Lineage    []string `yaml:"lineage,omitempty" json:"lineage,omitempty"`

	CreatedAt string `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`

	Signature    *Signature    `yaml:"signature,omitempty" json:"signature,omitempty"`
	Attestations []Attestation `yaml:"attestations,omitempty" json:"attestations,omitempty"`
}

func (m Manifest) Signed() bool {
	return m.Signature != nil
}

// Clone returns a deep copy so signing and attesting can return new values
// without mutating the caller's manifest.
func (m Manifest) Clone() Manifest {
	out := m
	out.Capabilities = cloneStrings(m.Capabilities)
	out.Protocols = cloneProtocols(m.Protocols)
	out.Permissions = cloneStrings(m.Permissions)
	out.Lineage = cloneStrings(m.Lineage)
	if m.Signature != nil {
		sig := *m.Signature
		out.Signature = &sig
	}
	if m.Attestations != nil {
		out.Attestations = make([]Attestation, len(m.Attestations))
		for i, a := range m.Attestations {
			out.Attestations[i] = a.Clone()
		}
	}
	return out
}

func (a Attestation) Clone() Attestation {
	out := a
	if a.Metadata != nil {
		out.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProtocols(in []Protocol) []Protocol {
	if in == nil {
		return nil
	}
	out := make([]Protocol, len(in))
	copy(out, in)
	return out
}
