// Package backup serializes the whole application state for export and
// restores it on import. JSON output uses the field names of the legacy
// browser backups so those files import unchanged.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"outreach/internal/domain"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var validate = validator.New()

// ParseFormat maps a format name or file extension to a known format.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown backup format %q", name)
}

// Export renders the state in the given format.
func Export(s domain.State, format string) ([]byte, error) {
	s = s.Clone()
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown backup format %q", format)
}

// Import parses and validates a backup. Every failure is a
// domain.ValidationError; nothing is returned unless the whole file is
// valid.
func Import(data []byte, format string) (domain.State, error) {
	var s domain.State
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &s); err != nil {
			return domain.State{}, domain.Invalid("import", fmt.Sprintf("invalid file: %v", err))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return domain.State{}, domain.Invalid("import", fmt.Sprintf("invalid file: %v", err))
		}
	default:
		return domain.State{}, domain.Invalid("import", fmt.Sprintf("unknown format %q", format))
	}
	if err := Check(s); err != nil {
		return domain.State{}, err
	}
	return Canonical(s), nil
}

// Check validates field constraints and identity rules of a state.
func Check(s domain.State) error {
	if err := validate.Struct(s); err != nil {
		return domain.Invalid("import", fmt.Sprintf("invalid file: %v", err))
	}
	for kind, ids := range map[string][]string{
		"company":  companyIDs(s.Companies),
		"contact":  contactIDs(s.Contacts),
		"sequence": sequenceIDs(s.Sequences),
		"step":     stepIDs(s.Steps),
		"task":     taskIDs(s.Tasks),
	} {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return domain.Invalid("import", fmt.Sprintf("duplicate %s id %s", kind, id))
			}
			seen[id] = true
		}
	}
	seqs := make(map[string]bool, len(s.Sequences))
	for _, seq := range s.Sequences {
		seqs[seq.ID] = true
	}
	for _, st := range s.Steps {
		if !seqs[st.SequenceID] {
			return domain.Invalid("import", fmt.Sprintf("step %s references unknown sequence %s", st.ID, st.SequenceID))
		}
	}
	return nil
}

// Canonical returns s with non-nil slices and every timestamp expressed in
// local time, the form transitions and storage produce.
func Canonical(s domain.State) domain.State {
	s = s.Clone()
	for i := range s.Tasks {
		s.Tasks[i].DueAt = s.Tasks[i].DueAt.In(time.Local)
	}
	return s
}

func companyIDs(items []domain.Company) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func contactIDs(items []domain.Contact) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sequenceIDs(items []domain.Sequence) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func stepIDs(items []domain.Step) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func taskIDs(items []domain.Task) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
