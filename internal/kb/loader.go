package kb

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// Document is the YAML shape of a curated knowledge-base extension file.
// Sections may be omitted; entries merge into the store with the usual
// replace-on-duplicate semantics.
type Document struct {
	Licenses           []graph.LicenseNode       `yaml:"licenses"`
	Obligations        []graph.ObligationNode    `yaml:"obligations"`
	ObligationEdges    []graph.ObligationEdge    `yaml:"obligation_edges"`
	CompatibilityEdges []graph.CompatibilityEdge `yaml:"compatibility_edges"`
	Annotations        []graph.AnnotationEdge    `yaml:"annotations"`
}

// Load decodes one YAML document and merges it into the store.
func Load(r io.Reader, store *graph.Store) error {
	var doc Document
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode knowledge document: %w", err)
	}
	return doc.Apply(store)
}

// LoadFile reads a knowledge-base extension file into the store.
func LoadFile(path string, store *graph.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open knowledge file %s: %w", path, err)
	}
	defer f.Close()

	if err := Load(f, store); err != nil {
		return fmt.Errorf("load knowledge file %s: %w", path, err)
	}
	return nil
}

// Apply merges the document into the store, nodes before edges. It stops
// at the first entry the store rejects; entries applied before it stay.
func (d *Document) Apply(store *graph.Store) error {
	for i := range d.Licenses {
		if err := store.AddLicense(&d.Licenses[i]); err != nil {
			return err
		}
	}
	for i := range d.Obligations {
		if err := store.AddObligation(&d.Obligations[i]); err != nil {
			return err
		}
	}
	for i := range d.ObligationEdges {
		if err := store.AddEdge(&d.ObligationEdges[i]); err != nil {
			return err
		}
	}
	for i := range d.CompatibilityEdges {
		if err := store.AddEdge(&d.CompatibilityEdges[i]); err != nil {
			return err
		}
	}
	for i := range d.Annotations {
		if err := store.AddEdge(&d.Annotations[i]); err != nil {
			return err
		}
	}
	return nil
}
