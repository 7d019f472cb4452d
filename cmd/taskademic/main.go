package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskademic/taskademic/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "taskademic",
	Short: "TaskAdemic - academic task prioritization and daily scheduling",
	Long: `TaskAdemic classifies your tasks into MoSCoW priority buckets and packs
them into your available time blocks, using an AI reasoning service when
configured and a deterministic scheduler otherwise.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(cfgFile)
	},
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr string
	cfgFile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "http://127.0.0.1:8642", "API server address")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: <config dir>/taskademic/config.yaml)")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
