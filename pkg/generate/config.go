package generate

// Config holds all configuration options for the generator.
type Config struct {
	// OutputRoot is the directory under which the per-problem directories
	// (Problem-<id>-<title>) are expected to live.
	OutputRoot string `json:"output_root"`

	// OutputFilename is the name of the document written into each
	// problem directory. An existing file of that name is overwritten.
	OutputFilename string `json:"output_filename"`
}

// DefaultConfig returns a Config with the conventional repository layout:
// problem directories directly under the working directory.
func DefaultConfig() *Config {
	return &Config{
		OutputRoot:     ".",
		OutputFilename: "HANDS-ON-EXERCISES.md",
	}
}
