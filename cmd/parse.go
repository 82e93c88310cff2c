package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/shared"
	"github.com/desertthunder/ymscrape/internal/tasks"
	"github.com/desertthunder/ymscrape/internal/ui"
	"github.com/urfave/cli/v3"
)

type bulkFailure struct {
	ArtistID string `json:"artist_id"`
	Error    string `json:"error"`
}

type bulkOutput struct {
	Saved  []models.ArtistSummary `json:"saved"`
	Failed []bulkFailure          `json:"failed"`
}

// Parse scrapes every artist ID given as an argument.
//
// A single ID runs directly; several run through the bulk worker pool.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one artist ID is required", shared.ErrMissingArgument)
	}

	if err := r.openEngine(ctx); err != nil {
		return err
	}
	defer r.Close()

	asJSON := cmd.Bool("json")

	if len(ids) == 1 {
		return r.parseOne(ctx, ids[0], asJSON)
	}

	workers := int(cmd.Int("workers"))
	if workers <= 0 {
		workers = r.config.Scraper.Workers
	}
	return r.parseMany(ctx, ids, workers, asJSON)
}

func (r *Runner) parseOne(ctx context.Context, id string, asJSON bool) error {
	var progress chan tasks.ProgressUpdate
	var writeErr error
	done := make(chan struct{})

	if !asJSON {
		progress = make(chan tasks.ProgressUpdate, 50)
		go func() {
			defer close(done)
			for update := range progress {
				var err error
				switch update.Phase {
				case tasks.FetchPages:
					err = r.writePlain("📥 %s\n", update.Message)
				case tasks.ExtractFields:
					err = r.writePlain("🔍 %s\n", update.Message)
				case tasks.PersistRecords:
					err = r.writePlain("   %s\n", update.Message)
				}
				if err != nil && writeErr == nil {
					writeErr = err
				}
			}
		}()
	} else {
		close(done)
	}

	result, err := r.engine.ParseArtist(ctx, id, progress)
	if progress != nil {
		close(progress)
	}
	<-done

	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	if asJSON {
		return r.writeJSON(result.Summary, true)
	}
	return r.writePlain("\n%s\n", ui.SummaryPanel(result.Summary, result.Mismatch, result.Untitled))
}

func (r *Runner) parseMany(ctx context.Context, ids []string, workers int, asJSON bool) error {
	var progress chan tasks.ProgressUpdate
	var writeErr error
	done := make(chan struct{})

	if !asJSON {
		progress = make(chan tasks.ProgressUpdate, len(ids))
		go func() {
			defer close(done)
			for update := range progress {
				if err := r.writePlain("%s\n", update.Message); err != nil && writeErr == nil {
					writeErr = err
				}
			}
		}()
	} else {
		close(done)
	}

	result, err := r.engine.BulkParse(ctx, ids, tasks.BulkParseOpts{
		NumWorkers: workers,
		RateLimit:  r.config.Scraper.RequestsPerSecond,
	}, progress)
	if progress != nil {
		close(progress)
	}
	<-done

	if err != nil {
		r.logger.Warn("bulk parse interrupted", "error", err)
	}

	if asJSON {
		out := bulkOutput{Saved: []models.ArtistSummary{}, Failed: []bulkFailure{}}
		for _, res := range result.Results {
			if res.Error != nil {
				out.Failed = append(out.Failed, bulkFailure{ArtistID: res.ArtistID, Error: res.Error.Error()})
			} else {
				out.Saved = append(out.Saved, res.Result.Summary)
			}
		}
		if werr := r.writeJSON(out, true); werr != nil {
			return werr
		}
	} else {
		if writeErr != nil {
			return writeErr
		}
		if werr := r.writePlain("\n%s\n", ui.Panel("Bulk parse", []ui.Row{
			{Label: "Artists", Value: fmt.Sprint(result.Total)},
			{Label: "Saved", Value: ui.Success(fmt.Sprint(result.Successful))},
			{Label: "Failed", Value: ui.Failure(fmt.Sprint(result.Failed))},
		})); werr != nil {
			return werr
		}
	}

	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d artists failed to parse", result.Failed, result.Total)
	}
	return nil
}
