package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mise/internal/log"
)

// Load decodes v over Defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Set writes value at a dotted key such as "derivation.conflict_policy".
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree. The file is left untouched if the result does not
// validate or names an unknown key.
func Set(configPath, key, value string) error {
	path := strings.Split(strings.TrimSpace(key), ".")
	for _, p := range path {
		if p == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	setPath(root, path, value)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := check(buf.Bytes()); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Updated config", "path", configPath, "key", key)
	return nil
}

// setPath walks or creates mappings along path and replaces the leaf scalar.
// Comments on an existing leaf are kept.
func setPath(node *yaml.Node, path []string, value string) {
	for i, name := range path {
		// A key written with only comments under it decodes as null.
		if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
			node.Kind, node.Tag, node.Value = yaml.MappingNode, "", ""
		}

		var child *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == name {
				child = node.Content[j+1]
				break
			}
		}

		last := i == len(path)-1
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			if last {
				child = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: name},
				child,
			)
		}

		if last {
			child.Kind = yaml.ScalarNode
			child.Tag = ""
			child.Style = 0
			child.Value = value
			child.Content = nil
			return
		}
		if child.Kind != yaml.MappingNode && !(child.Kind == yaml.ScalarNode && child.Tag == "!!null") {
			*child = yaml.Node{Kind: yaml.MappingNode, LineComment: child.LineComment}
		}
		node = child
	}
}

// check decodes data strictly and validates it.
func check(data []byte) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return err
	}
	cfg := Defaults()
	if err := v.UnmarshalExact(&cfg); err != nil {
		return err
	}
	return Validate(cfg)
}

// writeAtomic writes to a temp file and renames it over configPath.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".mise.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
