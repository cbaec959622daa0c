// core/microbe/loader.go
package microbe

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlEntry is the on-disk shape of one microbe:
//
//   - name: Streptococcus
//     disease: Strep Throat
//     symptoms: Sore throat, fever
//     risk: Moderate
type yamlEntry struct {
	Name     string `yaml:"name"`
	Disease  string `yaml:"disease"`
	Symptoms string `yaml:"symptoms"`
	Risk     string `yaml:"risk"`
}

// LoadYAML decodes a YAML list of microbes and validates it.
func LoadYAML(r io.Reader) (*KnowledgeBase, error) {
	var entries []yamlEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		if err == io.EOF {
			return New()
		}
		return nil, fmt.Errorf("decode microbes: %w", err)
	}
	recs := make([]Record, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, Record{Name: e.Name, Disease: e.Disease, Symptoms: e.Symptoms, Risk: Risk(e.Risk)})
	}
	return New(recs...)
}

// LoadFile opens path and calls LoadYAML.
func LoadFile(path string) (*KnowledgeBase, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	kb, err := LoadYAML(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}

// LoadFileOrDefault is LoadFile for a non-empty path, Default otherwise.
func LoadFileOrDefault(path string) (*KnowledgeBase, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
