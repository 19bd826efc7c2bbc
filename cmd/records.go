package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/utils"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	recordContent    string
	recordEmoji      string
	recordImportance string
	recordTags       []string

	recordsSearch string
	recordsTag    string

	RecordsCmd = &cobra.Command{
		Use:   "records",
		Short: "Manage the records stored on this device",
		Long: `Records are the notes that a backup carries between devices.

Examples:
  tact records add "Groceries" --content "milk, eggs" --tag home
  tact records list --search milk
  tact records delete 6f1c2a9e-...`,
		PersistentPreRun: initLogger,
	}
)

func init() {
	addLoggingFlags(RecordsCmd)

	recordsAddCmd.Flags().StringVarP(&recordContent, "content", "c", "", "record text")
	recordsAddCmd.Flags().StringVar(&recordEmoji, "emoji", "", "emoji shown next to the title")
	recordsAddCmd.Flags().StringVarP(&recordImportance, "importance", "i", "", "low, medium or high (default medium)")
	recordsAddCmd.Flags().StringSliceVarP(&recordTags, "tag", "t", nil, "tag to attach (repeatable)")

	recordsListCmd.Flags().StringVarP(&recordsSearch, "search", "s", "", "only records whose title or content contains this text")
	recordsListCmd.Flags().StringVarP(&recordsTag, "tag", "t", "", "only records with this tag")

	RecordsCmd.AddCommand(recordsAddCmd)
	RecordsCmd.AddCommand(recordsListCmd)
	RecordsCmd.AddCommand(recordsDeleteCmd)
}

// resetRecordsCommandState resets the records commands' global state for testing.
func resetRecordsCommandState() {
	recordContent = ""
	recordEmoji = ""
	recordImportance = ""
	recordTags = nil
	recordsSearch = ""
	recordsTag = ""
}

var recordsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records add command")

		r, err := workflows.AddRecord(context.Background(), workflows.AddRecordOptions{
			Title:      args[0],
			Content:    recordContent,
			Emoji:      recordEmoji,
			Importance: recordImportance,
			Tags:       recordTags,
		})
		if err != nil {
			fmt.Println(ui.Error.Sprint("✗") + " " + err.Error())
			return nil
		}

		fmt.Println(ui.Success.Sprint("✓") + " Added " + ui.Highlight.Sprint(r.Title) + " " + ui.Muted.Sprint(r.ID))
		return nil
	},
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records list command")

		records, err := workflows.ListRecords(context.Background(), workflows.ListRecordsOptions{
			Search: recordsSearch,
			Tag:    recordsTag,
		})
		if err != nil {
			return Logger.ErrorfAndReturn("failed to list records: %v", err)
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		for _, r := range records {
			title := r.Title
			if r.Emoji != "" {
				title = r.Emoji + " " + title
			}
			line := fmt.Sprintf("%s  %-6s  %s", ui.Muted.Sprint(r.ID), r.Importance, title)
			if len(r.Tags) > 0 {
				line += " " + ui.Muted.Sprint(strings.Join(r.Tags, ", "))
			}
			fmt.Println(line)
			if r.Content != "" {
				fmt.Println("    " + utils.Truncate(strings.ReplaceAll(r.Content, "\n", " "), 70))
			}
		}
		return nil
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records delete command")

		err := workflows.DeleteRecord(context.Background(), args[0])
		if errors.Is(err, kerrors.ErrRecordNotFound) {
			fmt.Println(ui.Error.Sprint("✗") + " No record " + ui.Highlight.Sprint(args[0]))
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to delete record: %v", err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Deleted " + ui.Muted.Sprint(args[0]))
		return nil
	},
}
