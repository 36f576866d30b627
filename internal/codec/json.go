package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mswell/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a segment tree from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Tree, error) {
	var tree domain.Tree
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &tree, nil
}

// Export exports a segment tree to JSON
func (c *JSONCodec) Export(tree *domain.Tree, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
