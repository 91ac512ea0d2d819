package alias

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/aliaseditor/types"
)

// MarkerFile identifies a folder-based .alias artifact.
const MarkerFile = "alias.json"

// Document is the alias definition stored in alias.json.
type Document struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
}

// DefaultDocument is the template for a newly declared alias.
func DefaultDocument() Document {
	return Document{Name: "NewAlias", Target: "i32"}
}

// Validate checks that both fields are set.
func (d Document) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Target) == "" {
		missing = append(missing, "target")
	}
	if len(missing) > 0 {
		return types.NewError(types.ErrInvalidDocument,
			fmt.Sprintf("alias document missing %s", strings.Join(missing, ", ")))
	}
	return nil
}

// Marshal encodes the document the way it is written to disk.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ParseDocument decodes and validates an alias document.
func ParseDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, types.NewError(types.ErrInvalidDocument, "alias document is not valid JSON").WithCause(err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}
