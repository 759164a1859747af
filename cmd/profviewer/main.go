// Command profviewer is a thin demonstration CLI: it loads a small
// fixture profile, builds the entry tree, and drives the tile service's
// four queries, printing JSON to stdout. Real deployments wire
// internal/service behind whatever transport the embedding viewer
// speaks (spec.md §9 Non-goals: CLI argument parsing and a production
// transport are explicitly out of scope).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legion-prof/profviewer/internal/config"
	"github.com/legion-prof/profviewer/internal/fixture"
	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/service"
	"github.com/legion-prof/profviewer/internal/tile"
)

var (
	configFile string
	fullTile   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "profviewer",
		Short: "Drive the tile engine against a fixture profile",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "engine tunables YAML file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVar(&fullTile, "full", false, "request full-resolution tiles instead of partial")

	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newSlotCmd())
	rootCmd.AddCommand(newSlotMetaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() *service.Service {
	cfg := config.Default()
	if configFile != "" {
		cfg = config.LoadFileWithEnv(configFile)
	}
	return service.New(fixture.BuildState(), cfg)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "fetch_description + fetch_info: the entry tree, interval, and field schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			printJSON(svc.FetchDescription())
			printJSON(svc.FetchInfo())
			return nil
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var entryID string
	var start, stop int64
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "fetch_summary_tile for one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.ParseEntryID(entryID, false)
			if err != nil {
				return err
			}
			svc := newService()
			tileID := tile.TileID{Interval: ids.NewInterval(ids.FromNs(start), ids.FromNs(stop))}
			res, err := svc.FetchSummaryTile(id, tileID, fullTile)
			if err != nil {
				return err
			}
			printJSON(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "entry id path, e.g. root/0/0/0")
	cmd.Flags().Int64Var(&start, "start", 0, "query interval start (ns)")
	cmd.Flags().Int64Var(&stop, "stop", 1_000_000, "query interval stop (ns)")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func newSlotCmd() *cobra.Command {
	var entryID string
	var start, stop int64
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "fetch_slot_tile for one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.ParseEntryID(entryID, false)
			if err != nil {
				return err
			}
			svc := newService()
			tileID := tile.TileID{Interval: ids.NewInterval(ids.FromNs(start), ids.FromNs(stop))}
			res, err := svc.FetchSlotTile(id, tileID, fullTile)
			if err != nil {
				return err
			}
			printJSON(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "entry id path, e.g. root/0/0/0")
	cmd.Flags().Int64Var(&start, "start", 0, "query interval start (ns)")
	cmd.Flags().Int64Var(&stop, "stop", 1_000_000, "query interval stop (ns)")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func newSlotMetaCmd() *cobra.Command {
	var entryID string
	var start, stop int64
	cmd := &cobra.Command{
		Use:   "slot-meta",
		Short: "fetch_slot_meta_tile for one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.ParseEntryID(entryID, false)
			if err != nil {
				return err
			}
			svc := newService()
			tileID := tile.TileID{Interval: ids.NewInterval(ids.FromNs(start), ids.FromNs(stop))}
			res, err := svc.FetchSlotMetaTile(id, tileID, fullTile)
			if err != nil {
				return err
			}
			printJSON(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "entry id path, e.g. root/0/0/0")
	cmd.Flags().Int64Var(&start, "start", 0, "query interval start (ns)")
	cmd.Flags().Int64Var(&stop, "stop", 1_000_000, "query interval stop (ns)")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}
