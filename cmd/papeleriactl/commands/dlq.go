package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var dlqLimit int64

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect or retry failed jobs",
	Long: `Jobs that failed ` + fmt.Sprint(worker.MaxAttempts) + ` times are parked in dlq:<queue>.

Subcommands:
  list   - Show the oldest parked jobs
  retry  - Move every parked job back to its queue`,
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the oldest parked jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := openRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		total, err := worker.DLQLength(cmd.Context(), rdb, worker.QueueEmail)
		if err != nil {
			return err
		}
		entries, err := worker.PeekDLQ(cmd.Context(), rdb, worker.QueueEmail, dlqLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d job(s) en DLQ\n", worker.QueueEmail, total)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FAILED_AT\tTYPE\tATTEMPTS\tREASON\tPAYLOAD")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				e.FailedAt.Format(time.DateTime), e.Type, e.Attempts, e.Reason, string(e.Payload))
		}
		return w.Flush()
	},
}

var dlqRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Move every parked job back to its queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := openRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		n, err := worker.RequeueDLQ(cmd.Context(), rdb, worker.QueueEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d job(s) reencolados en %s\n", n, worker.QueueEmail)
		return nil
	},
}

func openRedis() (*redis.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if rdb == nil {
		return nil, errors.New("REDIS_URL no configurado")
	}
	return rdb, nil
}

func init() {
	dlqListCmd.Flags().Int64Var(&dlqLimit, "limit", 20, "Maximum entries to show")
	dlqCmd.AddCommand(dlqListCmd, dlqRetryCmd)
	rootCmd.AddCommand(dlqCmd)
}
