package material

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type document struct {
	Profiles []Profile `yaml:"profiles"`
}

// EncodeYAML writes profiles as a YAML document with a top-level "profiles" list.
func EncodeYAML(w io.Writer, profiles []Profile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Profiles: profiles}); err != nil {
		return fmt.Errorf("encode profiles yaml: %w", err)
	}
	return enc.Close()
}

// DecodeYAML reads a document written by EncodeYAML. Profiles are validated;
// ids may be empty and are assigned when the profiles are added to a Store.
func DecodeYAML(r io.Reader) ([]Profile, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode profiles yaml: %w", err)
	}

	for i, p := range doc.Profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
	}
	if doc.Profiles == nil {
		return []Profile{}, nil
	}
	return doc.Profiles, nil
}
