package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskStartCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Mark a task in progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStart,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var (
	taskTitle  string
	taskDesc   string
	taskDue    string
	taskSize   string
	taskWeight float64
	taskStatus string
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskStartCmd, taskDoneCmd, taskRmCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	taskAddCmd.Flags().StringVar(&taskSize, "size", "", "Estimated size (small or large)")
	taskAddCmd.Flags().Float64Var(&taskWeight, "weight", 0, "Course grade weight as a fraction (e.g. 0.3)")
	taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (todo, in_progress, completed)")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{
		"title":       taskTitle,
		"description": taskDesc,
	}
	if taskDue != "" {
		body["due_date"] = taskDue
	}
	if taskSize != "" {
		body["estimated_size"] = taskSize
	}
	if cmd.Flags().Changed("weight") {
		body["course_weight"] = taskWeight
	}

	resp, err := apiPost("/tasks", body)
	if err != nil {
		return err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", result["id"])
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	url := "/tasks"
	if taskStatus != "" {
		url += "?status=" + taskStatus
	}

	resp, err := apiGet(url)
	if err != nil {
		return err
	}

	var tasks []map[string]interface{}
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	buckets := taskBuckets()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDUE\tSIZE\tPRIORITY")
	for _, t := range tasks {
		id := t["id"].(string)
		title := truncate(t["title"].(string), 40)
		status := t["status"].(string)
		due := ""
		if d, ok := t["due_date"].(string); ok {
			due = d[:10]
		}
		size := ""
		if s, ok := t["estimated_size"].(string); ok {
			size = s
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", truncateID(id), title, status, due, size, buckets[id])
	}
	w.Flush()
	return nil
}

// taskBuckets maps task ids to their current MoSCoW bucket. Listing still
// works when the analysis call fails; the priority column is just empty.
func taskBuckets() map[string]string {
	resp, err := apiGet("/analysis")
	if err != nil {
		return nil
	}

	var snapshot struct {
		DecisionLog []struct {
			ID    string `json:"id"`
			Final string `json:"final"`
		} `json:"decision_log"`
	}
	if err := json.Unmarshal(resp, &snapshot); err != nil {
		return nil
	}

	buckets := make(map[string]string, len(snapshot.DecisionLog))
	for _, d := range snapshot.DecisionLog {
		buckets[d.ID] = d.Final
	}
	return buckets
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var task map[string]interface{}
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", task["id"])
	fmt.Printf("Title:       %s\n", task["title"])
	fmt.Printf("Description: %s\n", task["description"])
	fmt.Printf("Status:      %s\n", task["status"])
	if due, ok := task["due_date"].(string); ok && due != "" {
		fmt.Printf("Due:         %s\n", due)
	}
	if size, ok := task["estimated_size"].(string); ok && size != "" {
		fmt.Printf("Size:        %s\n", size)
	}
	if weight, ok := task["course_weight"].(float64); ok {
		fmt.Printf("Weight:      %.0f%%\n", weight*100)
	}
	fmt.Printf("Created:     %s\n", task["created_at"])
	fmt.Printf("Updated:     %s\n", task["updated_at"])

	return nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	if _, err := apiPost("/tasks/"+args[0]+"/start", map[string]string{}); err != nil {
		return err
	}
	fmt.Printf("Started task %s\n", args[0])
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	if _, err := apiPost("/tasks/"+args[0]+"/complete", map[string]string{}); err != nil {
		return err
	}
	fmt.Printf("Completed task %s\n", args[0])
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	if err := apiDelete("/tasks/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
