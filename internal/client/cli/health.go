package cli

import (
	"context"
)

func (c *Cli) RunHealth(ctx context.Context) error {
	resp, err := c.apiClient.Health(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Server status: %s\n", resp.Status)
	if resp.Version != "" {
		c.io.Printf("Server version: %s\n", resp.Version)
	}
	c.io.Printf("Zone version: %d\n", resp.ZoneVersion)

	return nil
}
