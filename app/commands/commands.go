// Package commands implements the CLI subcommands. Each command wires
// the configured clients together and reports its result on stdout;
// diagnostics go through the structured logger.
package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gemsync/gemsync/app/cfg"
	"github.com/gemsync/gemsync/app/writefreely"
)

func newBlogClient(c *cfg.Cfg) (*writefreely.Client, error) {
	baseURL, err := url.Parse(c.WFURL)
	if err != nil {
		return nil, fmt.Errorf("invalid WriteFreely URL %q: %w", c.WFURL, err)
	}

	timeout := time.Duration(c.Timeout) * time.Second
	return writefreely.NewClient(baseURL, c.AccessToken, timeout, c.UserAgent), nil
}
