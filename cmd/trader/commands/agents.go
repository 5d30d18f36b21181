package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/agents"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the built-in agent configurations",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agent ids with budget and strategy summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		configs := agents.Registry()
		hash, err := agents.Hash(configs)
		if err != nil {
			return fmt.Errorf("hash configs: %w", err)
		}

		fmt.Printf("%-12s %10s %-14s %-10s %s\n", "ID", "BUDGET", "SIZING", "SCORING", "NAME")
		for _, cfg := range configs {
			scoring := "pass/fail"
			if !cfg.PassFail() {
				scoring = fmt.Sprintf("%.2f/%.2f", cfg.ExecuteThreshold, cfg.HalfSizeThreshold)
			}
			fmt.Printf("%-12s %10.0f %-14s %-10s %s\n",
				cfg.ID, cfg.MonthlyBudget, cfg.Sizing.Mode, scoring, cfg.Name)
		}
		fmt.Printf("\nconfig hash: %s\n", hash)
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one agent's full configuration as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := agents.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown agent %q", args[0])
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var agentsValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate the built-in registry, or an agent YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configs := agents.Registry()
		if len(args) == 1 {
			loaded, _, err := agents.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			configs = loaded
		}

		failed := 0
		for _, cfg := range configs {
			if err := agents.Validate(cfg); err != nil {
				failed++
				fmt.Printf("FAIL %-12s %v\n", cfg.ID, err)
				continue
			}
			fmt.Printf("ok   %s\n", cfg.ID)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d agent configs invalid", failed, len(configs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	agentsCmd.AddCommand(agentsValidateCmd)
}
