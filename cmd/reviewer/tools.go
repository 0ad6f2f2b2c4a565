package main

import (
	"encoding/json"
	"fmt"

	"github.com/ChamsBouzaiene/reviewer/internal/config"
	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/ChamsBouzaiene/reviewer/internal/tools"
	"github.com/ChamsBouzaiene/reviewer/internal/tools/filesystem"
	"github.com/spf13/cobra"
)

// toolDescriptor is the printed form of a tool advertised to the model.
type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func (a *app) toolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool descriptors sent to the model as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			env := filesystem.Env{FS: filesystem.NewOSFileSystem(), Scan: filesystem.DefaultScanOptions()}
			reg, err := tools.NewToolRegistry(env, tools.ToolSet{ReadOnly: cfg.DryRun})
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(describe(reg.Schemas()), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode tool descriptors: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func describe(schemas []engine.ToolSchema) []toolDescriptor {
	out := make([]toolDescriptor, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, toolDescriptor{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  json.RawMessage(s.JSONSchema),
		})
	}
	return out
}
