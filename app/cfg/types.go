package cfg

// Filter is a config-file rule excluding feed entries from a sync run.
type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type Cfg struct {
	// Selected subcommand: "login", "logout" or "sync"
	Command string

	// Blog connection
	WFURL       string
	AccessToken string
	Alias       string

	// Login credentials
	Username string
	Password string

	// Sync configuration
	GemlogURL         string
	Dialect           string
	StripBeforeMarker string
	StripAfterMarker  string
	DateFormat        string
	Workers           int
	DryRun            bool
	Filters           []Filter

	// Application metadata
	UserAgent string
	Timeout   int
	Debug     bool
	Version   string
}
