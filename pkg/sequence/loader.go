package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/version"
)

// Parse parses and validates a sequence from YAML bytes. JSON documents
// using the same keys are accepted too.
func Parse(data []byte) (*Sequence, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	var s Sequence
	if err := doc.Decode(&s); err != nil {
		return nil, &LoadError{Message: "failed to decode sequence", Cause: err}
	}

	if err := s.Validate(); err != nil {
		var le *LoadError
		if errors.As(err, &le) && errors.Is(le.Cause, duration.ErrInvalidFormat) {
			le.Line = invalidTimerLine(&doc, &s)
		}
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a sequence file.
func Load(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	s, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return s, nil
}

// LoadDirectory loads every .yaml and .yml file in dir, in name order.
// Subdirectories are not visited.
func LoadDirectory(dir string) ([]*Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{File: dir, Message: "failed to read directory", Cause: err}
	}

	var out []*Sequence
	for _, entry := range entries {
		if entry.IsDir() || !isSequenceFile(entry.Name()) {
			continue
		}
		s, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Marshal encodes s as YAML, stamping the current format version.
func Marshal(s *Sequence) ([]byte, error) {
	out := *s
	out.Version = version.Current
	return yaml.Marshal(&out)
}

func isSequenceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func checkVersion(v string) error {
	if err := version.Check(v); err != nil {
		return &LoadError{Message: "unsupported format version", Cause: err}
	}
	return nil
}

// invalidTimerLine returns the source line of the first timer that fails
// to parse, or 0.
func invalidTimerLine(doc *yaml.Node, s *Sequence) int {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return 0
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return 0
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "timers" {
			continue
		}
		items := root.Content[i+1]
		for j, raw := range s.Timers {
			if j >= len(items.Content) {
				break
			}
			if _, err := duration.Parse(raw); err != nil {
				return items.Content[j].Line
			}
		}
	}
	return 0
}
