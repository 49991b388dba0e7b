package commands

import (
	"context"
	"fmt"

	"github.com/gemsync/gemsync/app/cfg"
)

// Logout invalidates the configured access token on the server.
func Logout(ctx context.Context, c *cfg.Cfg) error {
	client, err := newBlogClient(c)
	if err != nil {
		return err
	}

	if err := client.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Access token invalidated")
	return nil
}
