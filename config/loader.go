package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"gopkg.in/yaml.v3"
)

// Load reads path, decoding it as YAML or JSON by extension (.yaml/.yml
// default to YAML, everything else including .json decodes as JSON),
// and returns the intermediate RawConfig tree. It does not validate or
// wire anything; call Build on the result for that.
func Load(path string) (*RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.InvalidConfig, "failed to read scenario file "+path, err)
	}
	return Parse(data, path)
}

// Parse decodes raw scenario bytes. hint is typically the source file
// path (or just its extension) and selects the decoder the same way
// Load does.
func Parse(data []byte, hint string) (*RawConfig, error) {
	var cfg RawConfig
	ext := strings.ToLower(filepath.Ext(hint))

	var err error
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, diag.Wrap(diag.InvalidConfig, "failed to decode scenario tree", err)
	}
	return &cfg, nil
}
