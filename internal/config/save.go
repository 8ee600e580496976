package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SaveCategories replaces the categories section of the config file.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree rather than re-marshaling the whole config.
func SaveCategories(configPath string, cats []CategoryConfig) error {
	return saveSection(configPath, "categories", buildCategoriesNode(cats))
}

// AddCategory appends a category and saves the categories section.
func AddCategory(configPath string, cat CategoryConfig, existing []CategoryConfig) error {
	cats := make([]CategoryConfig, 0, len(existing)+1)
	cats = append(cats, existing...)
	cats = append(cats, cat)
	if err := ValidateCategories(cats); err != nil {
		return err
	}
	return SaveCategories(configPath, cats)
}

// SaveActiveLabel stores the label active at startup.
func SaveActiveLabel(configPath, label string) error {
	return saveSection(configPath, "active_label", &yaml.Node{Kind: yaml.ScalarNode, Value: label})
}

func saveSection(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	switch {
	case doc.Kind == 0:
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, value},
			}},
		}
	case doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode:
		root := doc.Content[0]
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == key {
				root.Content[i+1] = value
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
		}
	default:
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".spanmark.yaml.tmp.*")
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
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// buildCategoriesNode renders categories with flow-style colors: [r, g, b].
func buildCategoriesNode(cats []CategoryConfig) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, len(cats))}
	for _, cat := range cats {
		color := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, ch := range cat.Color {
			color.Content = append(color.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(ch)})
		}
		entry := &yaml.Node{Kind: yaml.MappingNode}
		entry.Content = append(entry.Content, scalar("name"), scalar(cat.Name))
		entry.Content = append(entry.Content, scalar("color"), color)
		if cat.Caption != "" {
			entry.Content = append(entry.Content, scalar("caption"), scalar(cat.Caption))
		}
		node.Content = append(node.Content, entry)
	}
	return node
}
