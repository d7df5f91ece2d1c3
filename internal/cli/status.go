package cli

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/orchestrator/internal/supervise"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reachability of all configured services",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	client := &http.Client{Timeout: 2 * time.Second}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SERVICE\tENDPOINT\tREACHABLE")

	allUp := true
	for _, svc := range cfg.Services {
		ep := supervise.Endpoint{Host: svc.Host, Port: svc.Port, HealthPath: svc.HealthPath}
		reachable := "yes"
		resp, err := client.Get(ep.URL())
		if err != nil {
			reachable = "no"
			allUp = false
		} else {
			_ = resp.Body.Close()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", svc.Name, ep.URL(), reachable)
	}
	_ = w.Flush()

	if !allUp {
		os.Exit(1)
	}
}
