package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/kolah/xml2openrpc/internal/render"
	"github.com/kolah/xml2openrpc/internal/typemap"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const (
	DefaultConfigFile    = "xml2openrpc.yaml"
	DefaultVersion       = "1.0.0"
	DefaultTitleTemplate = "IBSng: branch {{.Branch}}: {{.Handler}}"
)

type Config struct {
	Input        string                       `koanf:"input"`
	Branch       string                       `koanf:"branch"`
	OutputDir    string                       `koanf:"output-dir"`
	Format       string                       `koanf:"format"`
	Strict       bool                         `koanf:"strict"`
	Validate     bool                         `koanf:"validate"`
	Info         InfoConfig                   `koanf:"info"`
	TypeMappings map[string]TypeMappingConfig `koanf:"type-mappings"`
}

type InfoConfig struct {
	Version       string `koanf:"version"`
	TitleTemplate string `koanf:"title-template"`
}

// TypeMappingConfig declares an extra source type tag.
type TypeMappingConfig struct {
	Type    []string `koanf:"type"`
	Comment string   `koanf:"comment"`
	Pattern string   `koanf:"pattern"`
}

func defaults() map[string]any {
	return map[string]any{
		"format":              string(render.FormatJSON),
		"info.version":        DefaultVersion,
		"info.title-template": DefaultTitleTemplate,
	}
}

// BindFlags binds the convert command flags.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultConfigFile+")")
	flags.StringP("input", "i", "", "Handler XML schema file")
	flags.StringP("branch", "b", "", "Branch label; documents are written to <output-dir>/<branch>")
	flags.StringP("output-dir", "o", "", "Output directory")
	flags.StringP("format", "f", "", "Output format: json, yaml")
	flags.Bool("strict", false, "Fail the run on unknown type tags instead of skipping the element")
	flags.Bool("validate", false, "Validate every document against the document schema before writing")
	flags.String("doc-version", "", "Value of info.version in emitted documents")
	flags.String("title-template", "", "Go template for info.title ({{.Branch}}, {{.Handler}})")
	flags.Bool("dry-run", false, "Print output without writing files")
}

// Load merges defaults, the config file, flags and the positional
// arguments <xml-file> <branch> <output-dir>, in increasing precedence.
func Load(cmd *cobra.Command, args []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configFile = DefaultConfigFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd, args)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command, args []string) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getBool := func(name string) (bool, bool) {
		if !cmd.Flags().Changed(name) {
			return false, false
		}
		v, err := cmd.Flags().GetBool(name)
		return v, err == nil
	}

	if v := getString("input"); v != "" {
		m["input"] = v
	}
	if v := getString("branch"); v != "" {
		m["branch"] = v
	}
	if v := getString("output-dir"); v != "" {
		m["output-dir"] = v
	}
	if v := getString("format"); v != "" {
		m["format"] = v
	}
	if v := getString("doc-version"); v != "" {
		m["info.version"] = v
	}
	if v := getString("title-template"); v != "" {
		m["info.title-template"] = v
	}
	if v, ok := getBool("strict"); ok {
		m["strict"] = v
	}
	if v, ok := getBool("validate"); ok {
		m["validate"] = v
	}

	// Positional arguments win over flags
	positional := []string{"input", "branch", "output-dir"}
	for i, arg := range args {
		if i < len(positional) && arg != "" {
			m[positional[i]] = arg
		}
	}

	return m
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input file is required")
	}
	if c.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	if !render.Format(c.Format).Valid() {
		return fmt.Errorf("invalid format: %s (valid: json, yaml)", c.Format)
	}
	if c.Info.Version == "" {
		return fmt.Errorf("info version must not be empty")
	}
	if c.Info.TitleTemplate == "" {
		return fmt.Errorf("title template must not be empty")
	}

	if _, err := c.Table(); err != nil {
		return fmt.Errorf("invalid type mappings: %w", err)
	}

	return nil
}

// Table returns the built-in type table extended with the configured
// type mappings.
func (c *Config) Table() (*typemap.Table, error) {
	extra := make(map[string]typemap.Mapping, len(c.TypeMappings))
	for _, tag := range slices.Sorted(maps.Keys(c.TypeMappings)) {
		tm := c.TypeMappings[tag]
		extra[tag] = typemap.Mapping{
			Types:   tm.Type,
			Comment: tm.Comment,
			Pattern: tm.Pattern,
		}
	}
	return typemap.Default().With(extra)
}

func (c *Config) OutputFormat() render.Format {
	return render.Format(c.Format)
}
