package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:     "timeblock",
	Aliases: []string{"block"},
	Short:   "Manage weekly time blocks",
}

var blockAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recurring time block",
	RunE:  runBlockAdd,
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time blocks",
	RunE:  runBlockList,
}

var blockRmCmd = &cobra.Command{
	Use:   "rm [block-id]",
	Short: "Delete a time block",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlockRm,
}

var (
	blockDay   int
	blockStart string
	blockEnd   string
	blockBusy  bool
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func init() {
	blockCmd.AddCommand(blockAddCmd, blockListCmd, blockRmCmd)

	blockAddCmd.Flags().IntVar(&blockDay, "day", 0, "Day of week (0=Monday .. 6=Sunday)")
	blockAddCmd.Flags().StringVar(&blockStart, "start", "", "Start time HH:MM (required)")
	blockAddCmd.Flags().StringVar(&blockEnd, "end", "", "End time HH:MM (required)")
	blockAddCmd.Flags().BoolVar(&blockBusy, "busy", false, "Mark the block unavailable for scheduling")
	blockAddCmd.MarkFlagRequired("start")
	blockAddCmd.MarkFlagRequired("end")
}

func runBlockAdd(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{
		"day_of_week":  blockDay,
		"start_time":   blockStart,
		"end_time":     blockEnd,
		"is_available": !blockBusy,
	}

	resp, err := apiPost("/timeblocks", body)
	if err != nil {
		return err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Created time block: %s\n", result["id"])
	return nil
}

func runBlockList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/timeblocks")
	if err != nil {
		return err
	}

	var blocks []map[string]interface{}
	if err := json.Unmarshal(resp, &blocks); err != nil {
		return err
	}

	if len(blocks) == 0 {
		fmt.Println("No time blocks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDAY\tSTART\tEND\tAVAILABLE")
	for _, b := range blocks {
		id := truncateID(b["id"].(string))
		day := dayNames[int(b["day_of_week"].(float64))]
		available := "yes"
		if avail, ok := b["is_available"].(bool); ok && !avail {
			available = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, day, b["start_time"], b["end_time"], available)
	}
	w.Flush()
	return nil
}

func runBlockRm(cmd *cobra.Command, args []string) error {
	if err := apiDelete("/timeblocks/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted time block %s\n", args[0])
	return nil
}
