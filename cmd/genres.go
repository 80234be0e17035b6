package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tastemaker/internal/genre"
	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/urfave/cli/v3"
)

// GenresList prints every category with its tags.
func (r *Runner) GenresList(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader(fmt.Sprintf("Genre Categories (%d tags)", r.normalizer.Len()))
	for _, c := range r.normalizer.Categories() {
		tags := r.normalizer.Tags(c)
		r.writePlain("%s (%d)\n  %s\n", c, len(tags), strings.Join(tags, ", "))
	}
	r.writePlain("\nUnlisted tags map to %q\n", genre.Other)
	return nil
}

// GenresLookup prints the category of each tag argument.
func (r *Runner) GenresLookup(ctx context.Context, cmd *cli.Command) error {
	tags := cmd.Args().Slice()
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", shared.ErrMissingArgument)
	}

	for _, tag := range tags {
		r.writePlain("%s → %s\n", tag, r.normalizer.Lookup(tag))
	}
	return nil
}
