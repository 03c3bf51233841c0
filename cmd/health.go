package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/demoapp/internal/config"
)

// HealthStatus is the result of the health command.
type HealthStatus struct {
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Overall   bool             `json:"overall"`
}

// Check is one health check result.
type Check struct {
	Message string `json:"message,omitempty"`
	Healthy bool   `json:"healthy"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running server and the content roots",
	Long: `Checks that the server answers on /healthz and that the views, docs and
static roots are readable directories. Used by container health checks.`,
	RunE: runHealthCheck,
}

var (
	healthTimeout time.Duration
	healthVerbose bool
)

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 3*time.Second, "Timeout for the HTTP check")
	healthCmd.Flags().BoolVarP(&healthVerbose, "verbose", "v", false, "Print every check as JSON")
}

func runHealthCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client := &http.Client{Timeout: healthTimeout}
	status := checkHealth(client, "http://"+cfg.Addr(), cfg.Paths)

	return reportHealth(cmd.OutOrStdout(), status, healthVerbose)
}

func checkHealth(client *http.Client, baseURL string, paths config.PathsConfig) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Checks:    make(map[string]Check),
		Overall:   true,
	}

	record := func(name string, c Check) {
		status.Checks[name] = c
		if !c.Healthy {
			status.Overall = false
		}
	}

	record("http_server", checkHTTPServer(client, baseURL+"/healthz"))
	record("views", checkDirectory(paths.Views))
	record("docs", checkDirectory(paths.Docs))
	record("static", checkDirectory(paths.Static))

	return status
}

func checkHTTPServer(client *http.Client, url string) Check {
	resp, err := client.Get(url)
	if err != nil {
		return Check{Message: fmt.Sprintf("failed to connect to server: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Check{Message: fmt.Sprintf("server returned status %d", resp.StatusCode)}
	}
	return Check{Message: "HTTP server responding", Healthy: true}
}

func checkDirectory(dir string) Check {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return Check{Message: fmt.Sprintf("cannot access %s: %v", dir, err)}
	case !info.IsDir():
		return Check{Message: dir + " is not a directory"}
	}
	return Check{Message: dir + " is readable", Healthy: true}
}

func reportHealth(w io.Writer, status *HealthStatus, verbose bool) error {
	if verbose {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	} else if status.Overall {
		fmt.Fprintln(w, "All health checks passed")
	} else {
		fmt.Fprintln(w, "Health checks failed")
		names := make([]string, 0, len(status.Checks))
		for name := range status.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if c := status.Checks[name]; !c.Healthy {
				fmt.Fprintf(w, "  - %s: %s\n", name, c.Message)
			}
		}
	}

	if !status.Overall {
		return errors.New("health checks failed")
	}
	return nil
}
