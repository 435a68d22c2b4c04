package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatJson = "json"
	formatYaml = "yaml"
)

func writeOutput(out io.Writer, format string, value interface{}) error {
	switch format {
	case formatJson:
		encoder := json.NewEncoder(out)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case formatYaml:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("unknown output format '%s', expected %s or %s", format, formatJson, formatYaml)
}
