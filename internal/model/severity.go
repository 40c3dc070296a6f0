package model

import "fmt"

// Severity ranks how sensitive an artifact found in a recovered payload is.
type Severity int

const (
	// SeverityInfo covers artifacts that only help correlation, such as
	// public keys or cryptocurrency addresses.
	SeverityInfo Severity = iota

	// SeverityLow covers references to outside resources, such as URLs.
	SeverityLow

	// SeverityMedium covers identity clues, such as email addresses.
	SeverityMedium

	// SeverityHigh covers bearer credentials, such as API tokens.
	SeverityHigh

	// SeverityCritical covers private key material.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	for _, candidate := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Artifact kinds recognized in recovered payloads.
const (
	ArtifactPrivateKey      = "private_key"
	ArtifactPGPPrivateKey   = "pgp_private_key"
	ArtifactPGPMessage      = "pgp_message"
	ArtifactPGPPublicKey    = "pgp_public_key"
	ArtifactSSHPublicKey    = "ssh_public_key"
	ArtifactAWSAccessKey    = "aws_access_key"
	ArtifactGitHubToken     = "github_token"
	ArtifactJWT             = "jwt"
	ArtifactConnString      = "connection_string"
	ArtifactEmail           = "email_address"
	ArtifactURL             = "url"
	ArtifactOnionAddress    = "onion_address"
	ArtifactBitcoinAddress  = "bitcoin_address"
	ArtifactEthereumAddress = "ethereum_address"
	ArtifactMoneroAddress   = "monero_address"
)

// Artifact is a recognizable piece of content found in a recovered payload.
type Artifact struct {
	// Kind is one of the Artifact* constants.
	Kind string `json:"kind"`

	// Value is the matched text. Secret material is reduced to its
	// header or a masked prefix.
	Value string `json:"value"`

	// Severity is the sensitivity of the artifact kind.
	Severity Severity `json:"severity"`
}

// ArtifactInfo describes an artifact kind.
type ArtifactInfo struct {
	Severity    Severity
	Description string
}

var artifactInfoMapping = map[string]ArtifactInfo{
	ArtifactPrivateKey: {
		Severity:    SeverityCritical,
		Description: "PEM or OpenSSH private key",
	},
	ArtifactPGPPrivateKey: {
		Severity:    SeverityCritical,
		Description: "PGP private key block",
	},
	ArtifactAWSAccessKey: {
		Severity:    SeverityHigh,
		Description: "AWS access key id",
	},
	ArtifactGitHubToken: {
		Severity:    SeverityHigh,
		Description: "GitHub personal or app token",
	},
	ArtifactJWT: {
		Severity:    SeverityHigh,
		Description: "JSON Web Token",
	},
	ArtifactConnString: {
		Severity:    SeverityHigh,
		Description: "database URL with embedded credentials",
	},
	ArtifactPGPMessage: {
		Severity:    SeverityMedium,
		Description: "PGP encrypted or signed message",
	},
	ArtifactEmail: {
		Severity:    SeverityMedium,
		Description: "email address",
	},
	ArtifactOnionAddress: {
		Severity:    SeverityMedium,
		Description: "Tor onion service address",
	},
	ArtifactURL: {
		Severity:    SeverityLow,
		Description: "web URL",
	},
	ArtifactPGPPublicKey: {
		Severity:    SeverityInfo,
		Description: "PGP public key block",
	},
	ArtifactSSHPublicKey: {
		Severity:    SeverityInfo,
		Description: "SSH public key",
	},
	ArtifactBitcoinAddress: {
		Severity:    SeverityInfo,
		Description: "Bitcoin address",
	},
	ArtifactEthereumAddress: {
		Severity:    SeverityInfo,
		Description: "Ethereum address",
	},
	ArtifactMoneroAddress: {
		Severity:    SeverityInfo,
		Description: "Monero address",
	},
}

// GetSeverity returns the severity of an artifact kind, or SeverityInfo
// for unknown kinds.
func GetSeverity(kind string) Severity {
	return GetArtifactInfo(kind).Severity
}

// GetArtifactInfo returns the description of an artifact kind.
func GetArtifactInfo(kind string) ArtifactInfo {
	if info, ok := artifactInfoMapping[kind]; ok {
		return info
	}
	return ArtifactInfo{
		Severity:    SeverityInfo,
		Description: "unrecognized artifact",
	}
}

// NewArtifact returns an artifact with the severity of its kind.
func NewArtifact(kind, value string) Artifact {
	return Artifact{Kind: kind, Value: value, Severity: GetSeverity(kind)}
}

// HighestSeverity returns the most sensitive severity among artifacts and
// false when the list is empty.
func HighestSeverity(artifacts []Artifact) (Severity, bool) {
	if len(artifacts) == 0 {
		return SeverityInfo, false
	}
	highest := artifacts[0].Severity
	for _, a := range artifacts[1:] {
		highest = max(highest, a.Severity)
	}
	return highest, true
}
