// Package codec encodes templates for export, import and byte-oriented
// stores. JSON is the human-editable format; msgpack is the compact one.
package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"composer/internal/domain"
)

// Format names a template encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(path))
}

// Encode serializes t in format f.
func Encode(t *domain.Template, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(t, "", "  ")
	case FormatMsgpack:
		return msgpack.Marshal(t)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
}

// Decode parses a template in format f and checks that every component
// names a definition. Props and styles come back in canonical form.
func Decode(data []byte, f Format) (*domain.Template, error) {
	var t domain.Template
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &t)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &t)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s template: %w", f, err)
	}
	if err := validate(t.Components, "components"); err != nil {
		return nil, err
	}
	t.Components = CanonicalComponents(t.Components)
	return &t, nil
}

func validate(comps []domain.SerializedComponent, path string) error {
	for i, c := range comps {
		at := fmt.Sprintf("%s[%d]", path, i)
		if c.ID == "" {
			return fmt.Errorf("decode template: %s has no id", at)
		}
		if c.DefinitionID == "" {
			return fmt.Errorf("decode template: %s (%s) has no definitionId", at, c.ID)
		}
		if err := validate(c.Children, at+".children"); err != nil {
			return err
		}
	}
	return nil
}
