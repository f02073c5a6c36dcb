package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Activity prints the requests the server recorded most recently for a client.
func (r *Runner) Activity(ctx context.Context, cmd *cli.Command) error {
	clientID := strings.TrimSpace(cmd.StringArg("client-id"))
	if clientID == "" {
		return fmt.Errorf("%w: client id", shared.ErrMissingArgument)
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	entries, err := c.Activity(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to fetch activity for %s: %w", clientID, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Activity for %s", clientID))
	if len(entries) == 0 {
		return r.writePlain("No requests recorded\n")
	}
	return r.writePlain("%s\n", formatter.ActivityToTable(entries))
}
