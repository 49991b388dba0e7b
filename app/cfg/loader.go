package cfg

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	ConfigFile  string `short:"c" long:"config" env:"GEMSYNC_CONFIG" description:"Path to a YAML configuration file"`
	WFURL       string `long:"wf-url" env:"GEMSYNC_WF_URL" description:"WriteFreely instance base URL (e.g., https://write.example.com)"`
	AccessToken string `short:"t" long:"wf-access-token" env:"GEMSYNC_WF_TOKEN" description:"WriteFreely access token"`
	Alias       string `short:"a" long:"wf-alias" env:"GEMSYNC_WF_ALIAS" description:"Target collection alias"`
	UserAgent   string `long:"user-agent" env:"GEMSYNC_USER_AGENT" description:"User agent string for outgoing requests"`
	Timeout     int    `long:"timeout" env:"GEMSYNC_TIMEOUT" description:"Request timeout in seconds"`
	Debug       bool   `long:"debug" env:"GEMSYNC_DEBUG" description:"Enable debug logging"`

	Login  loginCmd  `command:"login" description:"Exchange account credentials for an access token"`
	Logout logoutCmd `command:"logout" description:"Invalidate the access token"`
	Sync   syncCmd   `command:"sync" description:"Synchronize a gemlog to the blog"`
}

type loginCmd struct {
	Username string `short:"u" long:"username" env:"GEMSYNC_WF_USERNAME" description:"Account username"`
	Password string `short:"p" long:"password" env:"GEMSYNC_WF_PASSWORD" description:"Account password"`
}

type logoutCmd struct{}

type syncCmd struct {
	GemlogURL         string `long:"gemlog-url" env:"GEMSYNC_GEMLOG_URL" description:"Feed URL of the gemlog (gemini:// or http(s)://)"`
	Dialect           string `long:"dialect" env:"GEMSYNC_DIALECT" description:"Feed dialect: auto, atom or gemfeed"`
	StripBeforeMarker string `long:"strip-before-marker" description:"Drop entry content up to and including this marker"`
	StripAfterMarker  string `long:"strip-after-marker" description:"Drop entry content from this marker on"`
	DateFormat        string `long:"date-format" description:"Go layout for publish dates the feed parser cannot handle"`
	Workers           int    `long:"workers" env:"GEMSYNC_WORKERS" description:"Number of concurrent sync workers"`
	DryRun            bool   `short:"n" long:"dry-run" description:"Report what would change without writing"`
}

// fileCfg mirrors the YAML configuration file. Flags and environment
// variables take precedence over file values.
type fileCfg struct {
	WFURL             string   `yaml:"wf_url"`
	AccessToken       string   `yaml:"wf_access_token"`
	Alias             string   `yaml:"wf_alias"`
	GemlogURL         string   `yaml:"gemlog_url"`
	Dialect           string   `yaml:"dialect"`
	StripBeforeMarker string   `yaml:"strip_before_marker"`
	StripAfterMarker  string   `yaml:"strip_after_marker"`
	DateFormat        string   `yaml:"date_format"`
	Workers           int      `yaml:"workers"`
	Timeout           int      `yaml:"timeout"`
	UserAgent         string   `yaml:"user_agent"`
	Filters           []Filter `yaml:"filters"`
}

func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("no command given, expected login, logout or sync")
	}

	cfg := &Cfg{
		Command:           parser.Active.Name,
		WFURL:             raw.WFURL,
		AccessToken:       raw.AccessToken,
		Alias:             raw.Alias,
		Username:          raw.Login.Username,
		Password:          raw.Login.Password,
		GemlogURL:         raw.Sync.GemlogURL,
		Dialect:           raw.Sync.Dialect,
		StripBeforeMarker: raw.Sync.StripBeforeMarker,
		StripAfterMarker:  raw.Sync.StripAfterMarker,
		DateFormat:        raw.Sync.DateFormat,
		Workers:           raw.Sync.Workers,
		DryRun:            raw.Sync.DryRun,
		UserAgent:         raw.UserAgent,
		Timeout:           raw.Timeout,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if raw.ConfigFile != "" {
		if err := cfg.mergeFile(raw.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile fills configuration values the command line left empty.
func (c *Cfg) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	var file fileCfg
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	c.WFURL = cmp.Or(c.WFURL, file.WFURL)
	c.AccessToken = cmp.Or(c.AccessToken, file.AccessToken)
	c.Alias = cmp.Or(c.Alias, file.Alias)
	c.GemlogURL = cmp.Or(c.GemlogURL, file.GemlogURL)
	c.Dialect = cmp.Or(c.Dialect, file.Dialect)
	c.StripBeforeMarker = cmp.Or(c.StripBeforeMarker, file.StripBeforeMarker)
	c.StripAfterMarker = cmp.Or(c.StripAfterMarker, file.StripAfterMarker)
	c.DateFormat = cmp.Or(c.DateFormat, file.DateFormat)
	c.Workers = cmp.Or(c.Workers, file.Workers)
	c.Timeout = cmp.Or(c.Timeout, file.Timeout)
	c.UserAgent = cmp.Or(c.UserAgent, file.UserAgent)
	c.Filters = file.Filters

	return nil
}

func (c *Cfg) setDefaults() {
	c.Dialect = cmp.Or(c.Dialect, "auto")
	c.Workers = cmp.Or(c.Workers, 4)
	c.Timeout = cmp.Or(c.Timeout, 30)
	c.UserAgent = cmp.Or(c.UserAgent, "gemsync/"+c.Version)
}

func (c *Cfg) validate() error {
	if c.WFURL == "" {
		return fmt.Errorf("WriteFreely URL is required (--wf-url)")
	}

	switch c.Command {
	case "login":
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("login requires a username and a password")
		}
	case "logout":
		if c.AccessToken == "" {
			return fmt.Errorf("logout requires an access token (--wf-access-token)")
		}
	case "sync":
		if c.AccessToken == "" {
			return fmt.Errorf("sync requires an access token (--wf-access-token)")
		}
		if c.Alias == "" {
			return fmt.Errorf("sync requires a collection alias (--wf-alias)")
		}
		if c.GemlogURL == "" {
			return fmt.Errorf("sync requires a gemlog URL (--gemlog-url)")
		}
		if !slices.Contains([]string{"auto", "atom", "gemfeed"}, c.Dialect) {
			return fmt.Errorf("unknown feed dialect %q, expected auto, atom or gemfeed", c.Dialect)
		}
		if c.Workers < 1 {
			return fmt.Errorf("worker count must be positive, got %d", c.Workers)
		}
		for _, f := range c.Filters {
			if f.Field != "title" && f.Field != "link" {
				return fmt.Errorf("unknown filter field %q, expected title or link", f.Field)
			}
		}
	}

	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}

	return nil
}
