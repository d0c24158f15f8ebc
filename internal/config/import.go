package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"repositum/internal/importer/rules"
)

// ImportConfig is the import-specific configuration loaded from a YAML
// file. It controls update behavior, the file type allow-list and the rules
// applied to every imported document.
type ImportConfig struct {
	// KeepFieldsOnUpdate names the field groups a metadata update does not
	// reset.
	KeepFieldsOnUpdate []string

	// Collection addresses the collection every deposited document is
	// linked to (id, or roleName/roleOaiName plus number/name). Empty for
	// none.
	Collection map[string]any

	// FileTypes maps file extensions to their allowed MIME types. Empty
	// falls back to the built-in allow-list.
	FileTypes map[string][]string

	// Rules are applied in the order they appear in the file.
	Rules []rules.Config
}

// importConfigFile mirrors the YAML layout. The rules mapping is kept as a
// raw node because entry order matters and Go maps do not preserve it.
type importConfigFile struct {
	KeepFieldsOnUpdate []string            `yaml:"keepFieldsOnUpdate"`
	Collection         map[string]any      `yaml:"collection"`
	FileTypes          map[string][]string `yaml:"filetypes"`
	Rules              yaml.Node           `yaml:"rules"`
}

// LoadImportConfig reads and validates the import configuration file. An
// empty path yields the defaults: no rules, no keep fields, built-in file
// types.
func LoadImportConfig(path string) (*ImportConfig, error) {
	if path == "" {
		return &ImportConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import config: %w", err)
	}

	cfg, err := ParseImportConfig(data)
	if err != nil {
		return nil, fmt.Errorf("import config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseImportConfig parses import configuration YAML.
func ParseImportConfig(data []byte) (*ImportConfig, error) {
	var file importConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	cfg := &ImportConfig{
		KeepFieldsOnUpdate: file.KeepFieldsOnUpdate,
		Collection:         file.Collection,
		FileTypes:          file.FileTypes,
	}

	ruleConfigs, err := parseRules(&file.Rules)
	if err != nil {
		return nil, err
	}
	cfg.Rules = ruleConfigs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseRules walks the rules mapping node pairwise so the configuration
// order of the rules is preserved.
func parseRules(node *yaml.Node) ([]rules.Config, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("rules must be a mapping, got %s", node.Tag)
	}

	var configs []rules.Config
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		var options map[string]any
		if err := valueNode.Decode(&options); err != nil {
			return nil, fmt.Errorf("rule %s: %w", keyNode.Value, err)
		}

		ruleType, _ := options["type"].(string)
		delete(options, "type")

		configs = append(configs, rules.Config{
			Name:    keyNode.Value,
			Type:    ruleType,
			Options: options,
		})
	}
	return configs, nil
}

// Validate checks structural constraints of the configuration.
func (c *ImportConfig) Validate() error {
	if err := validation.Validate(c.KeepFieldsOnUpdate,
		validation.Each(validation.Required),
	); err != nil {
		return fmt.Errorf("keepFieldsOnUpdate: %w", err)
	}

	for _, rule := range c.Rules {
		if err := validation.Validate(rule.Type, validation.Required); err != nil {
			return fmt.Errorf("rule %s: type is required", rule.Name)
		}
	}
	return nil
}
