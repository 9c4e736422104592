package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"intel-agent/internal/intel/agent"
	"intel-agent/internal/intel/aggregator"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON     bool
		asMarkdown bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Run one intelligence-gathering pass and print the report",
		Example: `  intel-agent run "Tell me about John Doe" --json
  intel-agent run "employees from TechCorp Inc"
  intel-agent run "analyze https://example.com/contact" --markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := resolveFormat(asJSON, asMarkdown, format)
			if err != nil {
				return err
			}

			cfg, log, sync, err := setup(flags)
			if err != nil {
				return err
			}
			defer sync()

			ctx := cmd.Context()
			opts, closeCache := openCache(ctx, cfg, log)
			defer closeCache()

			a, err := agent.New(cfg, log, opts...)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Run(ctx, strings.Join(args, " "), outputFormat))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "render the report as JSON")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "render the report as Markdown")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json or markdown")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown", "format")
	return cmd
}

func resolveFormat(asJSON, asMarkdown bool, format string) (aggregator.OutputFormat, error) {
	switch {
	case asJSON:
		return aggregator.FormatJSON, nil
	case asMarkdown:
		return aggregator.FormatMarkdown, nil
	default:
		return aggregator.ParseOutputFormat(format)
	}
}
