package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hazyhaar/okato-places/pkg/config"
	"github.com/hazyhaar/okato-places/pkg/naming"
	"github.com/hazyhaar/okato-places/pkg/store"
)

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	limit := fs.Int("limit", 20, "number of runs to show")
	fs.Parse(args)

	logger := newLogger()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(exitFailure)
	}
	if fs.NArg() > 0 {
		cfg.DatabaseURL = fs.Arg(0)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{
		URL:      cfg.DatabaseURL,
		Login:    cfg.DatabaseLogin,
		Password: cfg.DatabasePassword,
	})
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(exitPersistence)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, *limit)
	if err != nil {
		logger.Error("list runs", "error", err)
		st.Close()
		os.Exit(exitPersistence)
	}
	printRuns(os.Stdout, runs)
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No import runs.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tPROCESSED\tINSERTED\tINPUT")
	for _, r := range runs {
		started := time.Unix(r.StartedAt, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, started, r.Status, r.Stats.Processed, r.Stats.Inserted, r.Input)
		if r.LastError != nil {
			fmt.Fprintf(tw, "\t\terror: %s\t\t\t\n", *r.LastError)
		}
	}
	tw.Flush()
}

func cmdInflect(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: okato inflect <title>")
		os.Exit(exitFailure)
	}
	for _, raw := range args {
		printNames(os.Stdout, naming.Transform(raw))
	}
}

func printNames(w io.Writer, n naming.Names) {
	fmt.Fprintf(w, "%s\t%s\t%s\n", n.Raw, n.Title, n.Pronounced)
}
