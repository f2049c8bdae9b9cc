package emit

// Config controls code generation limits and optional emitters.
//
// Example:
//
//	cfg := emit.DefaultConfig()
//	cfg.MaxStates = 512 // reject patterns whose automaton would be larger
//	prog, err := emit.Compile(node, cfg)
type Config struct {
	// MaxStates caps the number of NFA states the composite emitter may
	// build for one subtree. Larger automata fail with ErrTooComplex.
	// Default: 4096
	MaxStates int

	// MaxDepth limits the nesting depth the dispatcher recurses through.
	// Default: 1000
	MaxDepth int

	// InlineRanges is the largest number of class ranges tested inline.
	// Classes with more ranges get a helper with a binary decision tree.
	// Default: 4
	InlineRanges int

	// EnablePrefilter guards generated automata with a strings.Contains
	// test for a literal every match must contain.
	// Default: true
	EnablePrefilter bool

	// MinPrefilterLen is the shortest required literal worth a guard.
	// Default: 1
	MinPrefilterLen int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxStates:       4096,
		MaxDepth:        1000,
		InlineRanges:    4,
		EnablePrefilter: true,
		MinPrefilterLen: 1,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxStates: 2 to 65,536 (generated state sets live on the stack)
//   - MaxDepth: 10 to 10,000
//   - InlineRanges: 1 to 64
//   - MinPrefilterLen: 1 to 64 when EnablePrefilter is set
func (c Config) Validate() error {
	if c.MaxStates < 2 || c.MaxStates > 65_536 {
		return &ConfigError{
			Field:   "MaxStates",
			Message: "must be between 2 and 65,536",
		}
	}
	if c.MaxDepth < 10 || c.MaxDepth > 10_000 {
		return &ConfigError{
			Field:   "MaxDepth",
			Message: "must be between 10 and 10,000",
		}
	}
	if c.InlineRanges < 1 || c.InlineRanges > 64 {
		return &ConfigError{
			Field:   "InlineRanges",
			Message: "must be between 1 and 64",
		}
	}
	if c.EnablePrefilter && (c.MinPrefilterLen < 1 || c.MinPrefilterLen > 64) {
		return &ConfigError{
			Field:   "MinPrefilterLen",
			Message: "must be between 1 and 64",
		}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "coregen: invalid config: " + e.Field + ": " + e.Message
}
