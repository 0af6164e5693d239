package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgauin01/hustlebot/internal/store"
)

var (
	trackStatus string
	trackNotes  string
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Application tracker subcommands",
}

var trackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications",
	RunE:  runTrackList,
}

var trackUpdateCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Update an application's status",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackUpdate,
}

func init() {
	trackUpdateCmd.Flags().StringVar(&trackStatus, "status", "", "new status (to_apply, applied, interview, offer, rejected)")
	trackUpdateCmd.Flags().StringVar(&trackNotes, "notes", "", "note to append")
	trackUpdateCmd.MarkFlagRequired("status")

	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackListCmd)
	trackCmd.AddCommand(trackUpdateCmd)
}

func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

func runTrackList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	sqlStore, err := openStore()
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	apps, err := sqlStore.Applications()
	if err != nil {
		logger.Error("failed to load applications", "error", err)
		os.Exit(1)
	}

	if len(apps) == 0 {
		fmt.Println("No tracked applications yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tTITLE\tPLATFORM\tDATE\tSTATUS\tNOTES")
	for _, a := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.JobID, a.Title, a.Platform, a.AppliedDate.Format("2006-01-02"), a.Status, a.Notes)
	}
	return w.Flush()
}

func runTrackUpdate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	sqlStore, err := openStore()
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	if err := sqlStore.UpdateStatus(args[0], trackStatus, trackNotes); err != nil {
		logger.Error("failed to update application", "error", err)
		os.Exit(1)
	}
	logger.Info("application updated", "job_id", args[0], "status", trackStatus)
	return nil
}
