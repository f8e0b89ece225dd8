package conf

// Context carries what the CLI resolves before a subcommand runs.
type Context struct {
	// ConfigFile is the --config flag; empty uses the default search paths.
	ConfigFile string
	Debug      bool
	Settings   *Settings
}
