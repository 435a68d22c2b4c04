package apitype

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Metadata is the key/value annotation set read from or written into an
// image file. Values are strings or anything encoding/json can encode.
type Metadata map[string]interface{}

func NewMetadata() Metadata {
	return Metadata{}
}

func MetadataFromText(text map[string]string) Metadata {
	metadata := make(Metadata, len(text))
	for key, value := range text {
		metadata[key] = value
	}
	return metadata
}

func (s Metadata) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TextValue renders the value stored for key as file text: strings as is,
// everything else JSON encoded.
func (s Metadata) TextValue(key string) (string, error) {
	return ToTextValue(s[key])
}

func (s Metadata) Copy() Metadata {
	metadata := make(Metadata, len(s))
	for key, value := range s {
		metadata[key] = value
	}
	return metadata
}

func ToTextValue(value interface{}) (string, error) {
	if stringValue, ok := value.(string); ok {
		return stringValue, nil
	}

	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buffer.String(), "\n"), nil
}
