package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/CageChen/nbhub/internal/config"
	"github.com/CageChen/nbhub/internal/notebook"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(cfgFile, cmd.Flags())
	}

	root := &cobra.Command{
		Use:           "nbhub",
		Short:         "Serve a folder of Jupyter notebooks over a read-only HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, load)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.config/nbhub/config.yaml, then ./nbhub.yaml)")
	pf.StringP("dir", "d", "", "notebook directory")
	pf.String("git-ref", "", "serve notebooks as committed at this git ref")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	root.Flags().AddFlagSet(serveFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, load)
		},
	}
	serveCmd.Flags().AddFlagSet(serveFlags())

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the notebooks in the notebook directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			summaries, err := notebook.NewStore(newFileSystem(cfg)).List()
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), summaries, asJSON)
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	root.AddCommand(serveCmd, listCmd, configCmd)
	return root
}

func serveFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.IntP("port", "p", 0, "HTTP server port")
	fs.StringSlice("origin", nil, "allowed CORS origin (repeatable)")
	fs.Bool("watch", true, "push notebook changes to websocket clients")
	fs.String("style", "", "chroma style for code highlighting")
	return fs
}

func runServe(cmd *cobra.Command, load func(*cobra.Command) (*config.Config, error)) error {
	cfg, err := load(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return serve(ctx, cfg)
}

func printSummaries(w io.Writer, summaries []notebook.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tSIZE\tMODIFIED\tERROR")
	for _, s := range summaries {
		modified := "-"
		if s.LastModified != nil {
			sec := int64(*s.LastModified)
			modified = time.Unix(sec, 0).Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Filename, s.Size, modified, s.Error)
	}
	return tw.Flush()
}
