package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/store"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// EntityList prints every entity on the server.
func (r *Runner) EntityList(ctx context.Context, cmd *cli.Command) error {
	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	items, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.Sorted(items), cmd.Bool("pretty"))
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(items, format, path); err != nil {
			return err
		}
		r.logger.Info("exported catalog", "path", path, "format", format, "entities", len(items))
		return r.writePlain("✓ Exported %d entities to %s\n", len(items), path)
	}
	return formatter.Render(r.output, format, items)
}

// EntityGet prints a single entity.
func (r *Runner) EntityGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	item, err := c.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, cmd.Bool("pretty"))
	}
	return r.writePlain("%s [%s]\n", item, item.ID)
}

// EntityAdd creates an entity and prints the id the server assigned.
func (r *Runner) EntityAdd(ctx context.Context, cmd *cli.Command) error {
	item, err := itemFromFlags(cmd)
	if err != nil {
		return err
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	stored, err := c.Create(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to add entity: %w", err)
	}

	r.logger.Debug("created entity", "id", stored.ID)
	if cmd.Bool("json") {
		return r.writeJSON(stored, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", stored.ID)
}

// EntityUpdate replaces the entity stored under id.
func (r *Runner) EntityUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	item, err := itemFromFlags(cmd)
	if err != nil {
		return err
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	if err := c.Replace(ctx, id, item); err != nil {
		return fmt.Errorf("failed to update %s: %w", id, err)
	}
	return r.writePlain("✓ Updated %s\n", id)
}

// EntityDelete removes an entity.
func (r *Runner) EntityDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	if err := c.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

type importRow struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type importSummary struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []importRow `json:"results"`
}

// EntityImport creates every entity in a seed file through the bulk importer.
func (r *Runner) EntityImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	items, err := store.LoadSeed[models.Item](path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	c, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if useJSON || update.Phase == tasks.ImportDone {
				r.logger.Debug(update.Message, "phase", update.Phase)
				continue
			}
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.NewImporter(c).Import(ctx, progress, items, tasks.ImportOpts{
		Workers:   cmd.Int("workers"),
		RateLimit: cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if useJSON {
		summary := importSummary{
			Total:     result.Total,
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
			Results:   make([]importRow, 0, len(result.Results)),
		}
		for _, res := range result.Results {
			row := importRow{Index: res.Index, ID: res.Stored.ID}
			if res.Error != nil {
				row.Error = res.Error.Error()
			}
			summary.Results = append(summary.Results, row)
		}
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}

	r.writePlainln("Imported %d of %d entities (%d failed)", result.Succeeded, result.Total, result.Failed)
	return nil
}

func requireID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: entity id", shared.ErrMissingArgument)
	}
	return id, nil
}

func itemFromFlags(cmd *cli.Command) (models.Item, error) {
	year := cmd.Int("year")
	if year < 0 || year > math.MaxUint16 {
		return models.Item{}, fmt.Errorf("%w: --year %d out of range", shared.ErrInvalidFlag, year)
	}
	return models.NewItem(cmd.String("title"), cmd.String("creator"), cmd.String("format"), uint16(year)), nil
}
