package main

import (
	"context"
	"os"

	"github.com/mdsect/mdsect/internal/app"
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "mdsect"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName + " [paths...]",
		Short:   "Markdown sectionizer",
		Long:    "Splits markdown files into heading-delimited sections and emits them as a JSON array",
		Version: version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunIndex(context.Background(), app.DefaultRunParams(), cmd.Flags(), args)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	app.RegisterIndexFlags(rootCmd.Flags())

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the persisted section index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSearch(context.Background(), app.DefaultRunParams(), cmd.Flags(), args[0])
		},
	}
	app.RegisterSearchFlags(searchCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the section index over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServe(context.Background(), app.DefaultRunParams(), cmd.Flags(), version)
		},
	}
	app.RegisterServeFlags(serveCmd.Flags())

	rootCmd.AddCommand(searchCmd, serveCmd)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}
