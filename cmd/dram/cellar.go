package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/remote"
	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/spf13/cobra"
)

var cellarCmd = &cobra.Command{
	Use:   "cellar",
	Short: "Manage the whisky collection",
}

// withCellar runs fn over a loaded engine and tears the store down
// afterwards. Every cellar subcommand is a one-shot process.
func withCellar(ctx context.Context, fn func(ctx context.Context, app *appEnv, engine *cellar.Engine) error) error {
	app, err := newAppEnv(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	engine, err := cellar.NewEngine(ctx, app.store)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := engine.Wait(wctx); err != nil {
		return fmt.Errorf("store not readable: %w", err)
	}

	return fn(ctx, app, engine)
}

func printRecord(w io.Writer, r core.Record) {
	owner := ""
	if r.Provenance == core.ProvenanceAnnex {
		owner = " [yours]"
	}
	fmt.Fprintf(w, "#%d %s (%s, %s) %s, age %s, %.1f%% ABV, rated %.0f/100%s\n",
		r.ID, r.Name, r.Distillery, r.Region, r.Type, r.Age, r.ABV, r.Rating, owner)
	if len(r.Notes) > 0 {
		fmt.Fprintf(w, "    notes: %s\n", strings.Join(r.Notes, ", "))
	}
}

var (
	addName       string
	addDistillery string
	addRegion     string
	addType       string
	addAge        string
	addABV        float64
	addRating     float64
	addNotes      []string
	addStory      string
)

var cellarAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a bottle to your cellar",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			rec, err := engine.Add(ctx, core.Record{
				Name:       addName,
				Distillery: addDistillery,
				Region:     addRegion,
				Type:       addType,
				Age:        addAge,
				ABV:        addABV,
				Rating:     addRating,
				Notes:      addNotes,
				Story:      addStory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added:")
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		})
	},
}

var listMine bool

var cellarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			records := engine.All()
			if listMine {
				mine := true
				records = engine.Search("", cellar.Filters{UserAdded: &mine})
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The cellar is empty.")
				return nil
			}
			for _, r := range records {
				printRecord(cmd.OutOrStdout(), r)
			}
			return nil
		})
	},
}

var (
	searchRegion    string
	searchType      string
	searchMinAge    float64
	searchMaxAge    float64
	searchMinRating float64
	searchMaxRating float64
	searchMine      bool
)

var cellarSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			f := cellar.Filters{Region: searchRegion, Type: searchType}
			if cmd.Flags().Changed("min-age") {
				f.AgeMin = &searchMinAge
			}
			if cmd.Flags().Changed("max-age") {
				f.AgeMax = &searchMaxAge
			}
			if cmd.Flags().Changed("min-rating") {
				f.RatingMin = &searchMinRating
			}
			if cmd.Flags().Changed("max-rating") {
				f.RatingMax = &searchMaxRating
			}
			if cmd.Flags().Changed("mine") {
				f.UserAdded = &searchMine
			}

			records := engine.Search(strings.Join(args, " "), f)
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			for _, r := range records {
				printRecord(cmd.OutOrStdout(), r)
			}
			return nil
		})
	},
}

var cellarStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			s := engine.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Bottles:        %d (%d reference, %d yours)\n", s.Total, s.CoreCount, s.AnnexCount)
			fmt.Fprintf(w, "Types:          %s\n", strings.Join(s.Types, ", "))
			if s.MeanAge > 0 {
				fmt.Fprintf(w, "Average age:    %.1f years\n", s.MeanAge)
			}
			if !s.LastMutation.IsZero() {
				fmt.Fprintf(w, "Last change:    %s\n", s.LastMutation.Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var cellarRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove one of your bottles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			removed, err := engine.Remove(ctx, id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No user-added bottle with id %d. Reference bottles cannot be removed.\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d.\n", id)
			return nil
		})
	},
}

var cellarShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Publish one of your bottles as a community review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			if app.remote.BaseURL == "" {
				return fmt.Errorf("no remote server configured (set DRAM_REMOTE_URL)")
			}

			var rec core.Record
			var found bool
			for _, r := range engine.All() {
				if r.ID == id {
					rec, found = r, true
					break
				}
			}
			if !found {
				return fmt.Errorf("no bottle with id %d", id)
			}

			client := remote.NewClient(app.remote.BaseURL, app.remote.Token)
			review, err := client.CreateReview(ctx, rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s as review %s.\n", rec.Name, review.ID)
			return nil
		})
	},
}

var cellarUnshareCmd = &cobra.Command{
	Use:   "unshare <review-id>",
	Short: "Take one of your reviews off the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withCellar(ctx, func(ctx context.Context, app *appEnv, engine *cellar.Engine) error {
			if app.remote.BaseURL == "" {
				return fmt.Errorf("no remote server configured (set DRAM_REMOTE_URL)")
			}

			client := remote.NewClient(app.remote.BaseURL, app.remote.Token)
			if err := client.DeleteReview(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %s removed.\n", args[0])
			return nil
		})
	},
}

func init() {
	cellarAddCmd.Flags().StringVar(&addName, "name", "", "bottle name")
	cellarAddCmd.Flags().StringVar(&addDistillery, "distillery", "", "distillery")
	cellarAddCmd.Flags().StringVar(&addRegion, "region", "", "region")
	cellarAddCmd.Flags().StringVar(&addType, "type", "", "whisky type")
	cellarAddCmd.Flags().StringVar(&addAge, "age", "NAS", "age in years or a statement like NAS")
	cellarAddCmd.Flags().Float64Var(&addABV, "abv", 0, "alcohol by volume")
	cellarAddCmd.Flags().Float64Var(&addRating, "rating", 0, "rating out of 100")
	cellarAddCmd.Flags().StringSliceVar(&addNotes, "notes", nil, "tasting notes, comma separated")
	cellarAddCmd.Flags().StringVar(&addStory, "story", "", "a short story about the bottle")
	_ = cellarAddCmd.MarkFlagRequired("name")

	cellarListCmd.Flags().BoolVar(&listMine, "mine", false, "only your own additions")

	cellarSearchCmd.Flags().StringVar(&searchRegion, "region", "", "exact region")
	cellarSearchCmd.Flags().StringVar(&searchType, "type", "", "exact type")
	cellarSearchCmd.Flags().Float64Var(&searchMinAge, "min-age", 0, "minimum numeric age")
	cellarSearchCmd.Flags().Float64Var(&searchMaxAge, "max-age", 0, "maximum numeric age")
	cellarSearchCmd.Flags().Float64Var(&searchMinRating, "min-rating", 0, "minimum rating")
	cellarSearchCmd.Flags().Float64Var(&searchMaxRating, "max-rating", 0, "maximum rating")
	cellarSearchCmd.Flags().BoolVar(&searchMine, "mine", false, "true for your additions, false for the reference set")

	cellarCmd.AddCommand(
		cellarAddCmd,
		cellarListCmd,
		cellarSearchCmd,
		cellarStatsCmd,
		cellarRemoveCmd,
		cellarShareCmd,
		cellarUnshareCmd,
	)
	rootCmd.AddCommand(cellarCmd)
}
