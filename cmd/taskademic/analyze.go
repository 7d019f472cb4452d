package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/taskademic/taskademic/internal/moscow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show the MoSCoW priority matrix",
	RunE:  runAnalyze,
}

var (
	analyzeRefresh bool
	analyzeLog     bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "Force recomputation instead of using the cached analysis")
	analyzeCmd.Flags().BoolVar(&analyzeLog, "log", false, "Show the per-task decision log")
}

var (
	mustStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	shouldStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	couldStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	wontStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6B7280"))
	entryStyle  = lipgloss.NewStyle().Padding(0, 2)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var bucketHeaders = map[moscow.Bucket]struct {
	label string
	style lipgloss.Style
}{
	moscow.BucketMust:   {"MUST DO", mustStyle},
	moscow.BucketShould: {"SHOULD DO", shouldStyle},
	moscow.BucketCould:  {"COULD DO", couldStyle},
	moscow.BucketWont:   {"WON'T DO (this week)", wontStyle},
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url := "/analysis"
	if analyzeRefresh {
		url += "?refresh=true"
	}

	resp, err := apiGet(url)
	if err != nil {
		return err
	}

	var snapshot moscow.Snapshot
	if err := json.Unmarshal(resp, &snapshot); err != nil {
		return err
	}

	for _, bucket := range moscow.Buckets {
		header := bucketHeaders[bucket]
		entries := snapshot.Buckets[bucket]
		fmt.Printf("%s (%d)\n", header.style.Render(header.label), len(entries))
		if len(entries) == 0 {
			fmt.Println(entryStyle.Render(mutedStyle.Render("none")))
			continue
		}
		for _, entry := range entries {
			line := fmt.Sprintf("%s  score %d  %s", entry.Title, entry.Score, dueLabel(entry.DueInDays))
			fmt.Println(entryStyle.Render(line))
		}
	}

	if analyzeLog {
		fmt.Println()
		fmt.Println(mutedStyle.Render("Decision log:"))
		for _, d := range snapshot.DecisionLog {
			fmt.Printf("  %s  type=%s importance=%d urgency=%d score=%d -> %s (%s)\n",
				truncateID(d.ID), d.Type, d.Importance, d.Urgency, d.Score, d.Final, d.MatchedRule)
		}
	}

	fmt.Println()
	fmt.Println(mutedStyle.Render("Generated at " + snapshot.GeneratedAt.Format("2006-01-02 15:04 MST")))
	return nil
}

func dueLabel(days *int) string {
	switch {
	case days == nil:
		return "no due date"
	case *days < 0:
		return fmt.Sprintf("overdue by %dd", -*days)
	case *days == 0:
		return "due today"
	case *days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %dd", *days)
	}
}
