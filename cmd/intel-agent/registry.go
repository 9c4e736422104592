package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gi "intel-agent/internal/workers/intelligence/gather-intelligence"
	"intel-agent/pkg/registry"
)

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check that a registry file is well formed and describes the gather-intelligence task",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			if _, err := reg.Find(gi.TaskType); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "registry %s is valid: %d activities\n", path, len(reg.Activities))
			return err
		},
	}
	validate.Flags().StringVar(&path, "path", "configs/activity-registry.json", "registry file")

	cmd.AddCommand(validate)
	return cmd
}
