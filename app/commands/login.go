package commands

import (
	"context"
	"fmt"

	"github.com/gemsync/gemsync/app/cfg"
)

// Login exchanges account credentials for an access token and prints
// the token, ready to be stored in GEMSYNC_WF_TOKEN.
func Login(ctx context.Context, c *cfg.Cfg) error {
	client, err := newBlogClient(c)
	if err != nil {
		return err
	}

	token, err := client.Login(ctx, c.Username, c.Password)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
