package dna

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cellscope-core/fasta"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes a name -> sequence mapping:
//
//	Streptococcus: ATGCCATTAGTGCTAGCTGCTGCTGA
//	"H. pylori": ATGGCCATTGTAATGGGCCGCTGAAA
func LoadYAML(r io.Reader) (*Catalog, error) {
	seqs := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&seqs); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode sequences: %w", err)
	}
	return NewCatalog(seqs)
}

// LoadFASTA builds a catalog from FASTA records. The whole header line is the
// microbe name, so ">H. pylori" maps to "H. pylori".
func LoadFASTA(r io.Reader) (*Catalog, error) {
	seqs := map[string]string{}
	err := fasta.Read(r, fasta.Options{FullHeader: true}, func(rec fasta.Record) error {
		if _, dup := seqs[rec.ID]; dup {
			return fmt.Errorf("duplicate FASTA record %q", rec.ID)
		}
		seqs[rec.ID] = string(rec.Seq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCatalog(seqs)
}

// LoadFile picks the format from the extension: .yaml/.yml, otherwise FASTA
// (gzip allowed).
func LoadFile(path string) (*Catalog, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var c *Catalog
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz"))) {
	case ".yaml", ".yml":
		c, err = LoadYAML(rc)
	default:
		c, err = LoadFASTA(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadFileOrDefault is LoadFile for a non-empty path, DefaultCatalog otherwise.
func LoadFileOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return LoadFile(path)
}
