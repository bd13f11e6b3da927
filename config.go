package wings

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config controls the resource limits and host hooks of a Context. The zero
// value is not useful; start from DefaultConfig.
type Config struct {
	// MaxAlloc is the hard cap on live values. Exceeding it raises
	// MemoryError.
	MaxAlloc int `yaml:"maxAlloc"`
	// MaxRecursion is the maximum call depth. Exceeding it raises
	// RecursionError.
	MaxRecursion int `yaml:"maxRecursion"`
	// MaxCollectionSize caps the element count of any single container.
	MaxCollectionSize int `yaml:"maxCollectionSize"`
	// GCRunFactor is the garbage collection trigger multiplier: a collection
	// runs when the live count exceeds the previous live count times this
	// factor. Values below 1 are clamped to 1.
	GCRunFactor float64 `yaml:"gcRunFactor"`

	// Print is the stdout sink for the print builtin. Defaults to os.Stdout.
	Print func(message string) `yaml:"-"`

	// Argv holds program arguments exposed through the sys module.
	Argv []string `yaml:"argv"`

	// EnableOSAccess gates registration of the os module.
	EnableOSAccess bool `yaml:"enableOSAccess"`
	// IsATTY forces the sys module's isatty result. When false, the sys
	// module probes the real stdout where the platform allows.
	IsATTY bool `yaml:"isatty"`

	// ImportPath is the directory searched for file modules.
	ImportPath string `yaml:"importPath"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxAlloc:          100000,
		MaxRecursion:      100,
		MaxCollectionSize: 1000000000,
		GCRunFactor:       2.0,
		Print: func(message string) {
			os.Stdout.WriteString(message)
		},
	}
}

// LoadConfig reads a YAML configuration file and overlays it on the
// defaults. Fields absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("wings: parsing %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.MaxAlloc < 0 {
		return fmt.Errorf("wings: maxAlloc must be non-negative")
	}
	if c.MaxRecursion < 0 {
		return fmt.Errorf("wings: maxRecursion must be non-negative")
	}
	if c.MaxCollectionSize < 0 {
		return fmt.Errorf("wings: maxCollectionSize must be non-negative")
	}
	if c.GCRunFactor < 1.0 {
		c.GCRunFactor = 1.0
	}
	if c.Print == nil {
		c.Print = func(string) {}
	}
	return nil
}
