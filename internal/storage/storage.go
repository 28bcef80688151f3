package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BenjaminSRussell/macwinua/internal/types"
	"gopkg.in/yaml.v3"
)

// Format is an on-disk table encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported table file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// LoadTable reads an agent table from a JSON or YAML file
func LoadTable(path string) (types.Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return types.Table{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to read table: %w", err)
	}

	return DecodeTable(data, format)
}

// DecodeTable parses table data in the given format
func DecodeTable(data []byte, format Format) (types.Table, error) {
	var table types.Table
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &table); err != nil {
			return types.Table{}, fmt.Errorf("failed to unmarshal table: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &table); err != nil {
			return types.Table{}, fmt.Errorf("failed to unmarshal table: %w", err)
		}
	default:
		return types.Table{}, fmt.Errorf("unsupported table format %q", format)
	}
	return table, nil
}

// EncodeTable serializes a table in the given format
func EncodeTable(table types.Table, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal table: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(table)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal table: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported table format %q", format)
}

// SaveTable writes a table, creating parent directories as needed
func SaveTable(path string, table types.Table) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := EncodeTable(table, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create table directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	return nil
}
