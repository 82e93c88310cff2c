package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ymscrape/internal/formatter"
	"github.com/desertthunder/ymscrape/internal/shared"
	"github.com/desertthunder/ymscrape/internal/ui"
	"github.com/urfave/cli/v3"
)

// ArtistsList prints every stored artist.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(ctx); err != nil {
		return err
	}
	defer r.Close()

	artists, err := r.store.ListArtists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, true)
	}

	if len(artists) == 0 {
		return r.writePlain("%s\n", ui.Help("No artists stored yet. Run 'ymscrape parse <artist-id>' first."))
	}

	if err := r.writePlain("%s\n\n", ui.Title(fmt.Sprintf("Artists (%d)", len(artists)))); err != nil {
		return err
	}
	for _, a := range artists {
		count, err := r.store.Tracks.Count(ctx, a.ID)
		if err != nil {
			return err
		}
		if err := r.writePlain("%-30s %8d subscribers %10d monthly %4d albums %4d tracks\n",
			a.Name, a.Subscribers, a.MonthlyListeners, a.AlbumsCount, count); err != nil {
			return err
		}
	}
	return nil
}

// ArtistsShow renders one stored artist and its tracks.
func (r *Runner) ArtistsShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrMissingArgument)
	}

	if err := r.openStore(ctx); err != nil {
		return err
	}
	defer r.Close()

	artist, tracks, err := r.store.ArtistTracks(ctx, name)
	if err != nil {
		return err
	}

	export := &formatter.ArtistExport{Artist: artist, Tracks: tracks}
	format := cmd.String("format")

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(export, format, path); err != nil {
			return err
		}
		r.logger.Info("export written", "artist", artist.Name, "format", format, "path", path)
		return nil
	}

	data, err := formatter.Export(export, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ArtistsDelete removes a stored artist; its tracks are removed with it.
func (r *Runner) ArtistsDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrMissingArgument)
	}

	if err := r.openStore(ctx); err != nil {
		return err
	}
	defer r.Close()

	if err := r.store.Artists.Delete(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", name)
}
