package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate and view daily schedules",
}

var scheduleGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the schedule for a date",
	RunE:  runScheduleGenerate,
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored schedule for a date",
	RunE:  runScheduleShow,
}

var scheduleDate string

func init() {
	scheduleCmd.AddCommand(scheduleGenerateCmd, scheduleShowCmd)

	scheduleGenerateCmd.Flags().StringVar(&scheduleDate, "date", "", "Schedule date YYYY-MM-DD (default: today)")
	scheduleShowCmd.Flags().StringVar(&scheduleDate, "date", "", "Schedule date YYYY-MM-DD (default: today)")
}

// scheduleResponse matches the server's schedule payload.
type scheduleResponse struct {
	Schedule struct {
		ID                    string `json:"id"`
		Date                  string `json:"date"`
		TotalAvailableMinutes int    `json:"total_available_minutes"`
		TotalScheduledMinutes int    `json:"total_scheduled_minutes"`
		TotalBreakMinutes     int    `json:"total_break_minutes"`
		TasksCount            int    `json:"tasks_count"`
		MustCount             int    `json:"moscow_must_count"`
		ShouldCount           int    `json:"moscow_should_count"`
		RemainingMinutes      int    `json:"remaining_time_minutes"`
		Origin                string `json:"origin"`
	} `json:"schedule"`
	Tasks []struct {
		TaskID                   string  `json:"task_id"`
		StartTime                string  `json:"start_time"`
		EndTime                  string  `json:"end_time"`
		EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
		PomodoroSessions         int     `json:"pomodoro_sessions"`
		BreakMinutes             int     `json:"break_minutes"`
		Reasoning                string  `json:"reasoning"`
		PriorityScore            float64 `json:"priority_score"`
	} `json:"tasks"`
}

var (
	scheduleTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	originAIStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	originPackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

func runScheduleGenerate(cmd *cobra.Command, args []string) error {
	body := map[string]string{}
	if scheduleDate != "" {
		body["date"] = scheduleDate
	}

	resp, err := apiPost("/schedule", body)
	if err != nil {
		return err
	}

	var result scheduleResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	printSchedule(result)
	return nil
}

func runScheduleShow(cmd *cobra.Command, args []string) error {
	url := "/schedule"
	if scheduleDate != "" {
		url += "?date=" + scheduleDate
	}

	resp, err := apiGet(url)
	if err != nil {
		return err
	}

	var result scheduleResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	printSchedule(result)
	return nil
}

func printSchedule(result scheduleResponse) {
	origin := originPackStyle.Render("fallback packer")
	if result.Schedule.Origin == "ai" {
		origin = originAIStyle.Render("AI planner")
	}
	fmt.Printf("%s  (%s)\n\n", scheduleTitleStyle.Render("Schedule for "+result.Schedule.Date), origin)

	if len(result.Tasks) == 0 {
		fmt.Println("Nothing scheduled.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "START\tEND\tTASK\tMINUTES\tPOMODOROS\tSCORE")
		for _, t := range result.Tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\n",
				t.StartTime, t.EndTime, truncateID(t.TaskID),
				t.EstimatedDurationMinutes, t.PomodoroSessions, t.PriorityScore)
		}
		w.Flush()
	}

	fmt.Println()
	fmt.Printf("Available: %s  Scheduled: %s  Breaks: %s  Remaining: %s\n",
		formatMinutes(result.Schedule.TotalAvailableMinutes),
		formatMinutes(result.Schedule.TotalScheduledMinutes),
		formatMinutes(result.Schedule.TotalBreakMinutes),
		formatMinutes(result.Schedule.RemainingMinutes))
	fmt.Printf("Tasks: %d (%d must, %d should)\n",
		result.Schedule.TasksCount, result.Schedule.MustCount, result.Schedule.ShouldCount)
}

func formatMinutes(minutes int) string {
	d := time.Duration(minutes) * time.Minute
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
