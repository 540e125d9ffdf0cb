package guru

import (
	"crypto/sha256"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file written into the working directory.
const ManifestName = "manifest.yaml"

// Manifest indexes every card in an archive plus the collection metadata the
// upload target needs to reconstruct the document set. It is finalized
// exactly once per build, after all cards are written.
type Manifest struct {
	Title             string       `yaml:"title"`
	PublishedLocation string       `yaml:"published_location,omitempty"`
	Tags              []string     `yaml:"tags"`
	Cards             []Card       `yaml:"cards"`
	Boards            []Board      `yaml:"boards,omitempty"`
	BoardGroups       []BoardGroup `yaml:"board_groups,omitempty"`
}

// Card is one manifest entry, in the order pages were supplied.
type Card struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Tags        []string `yaml:"tags,omitempty"`
	ExternalID  string   `yaml:"external_id"`
	ExternalURL string   `yaml:"external_url,omitempty"`
}

// BoardItem references a card from a board.
type BoardItem struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// Board groups the cards of one documentation section.
type Board struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Items       []BoardItem `yaml:"items"`
	ExternalID  string      `yaml:"external_id"`
	ExternalURL string      `yaml:"external_url,omitempty"`
}

// BoardGroup bundles the boards of one top-level section.
type BoardGroup struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Boards      []string `yaml:"boards"`
	ExternalID  string   `yaml:"external_id"`
	ExternalURL string   `yaml:"external_url,omitempty"`
}

// ToYAML serializes the manifest. Output is deterministic for identical
// inputs: struct field order is fixed and entries keep supply order.
func (m *Manifest) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromYAML deserializes a manifest.
func FromYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic content hash of the manifest, usable for
// detecting rebuilds that would produce an identical archive index.
func (m *Manifest) Hash() (string, error) {
	data, err := m.ToYAML()
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
