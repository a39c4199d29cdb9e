package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hostsim/hostsim/sim"
)

var (
	configPath  string
	policy      string
	workers     int
	seed        int64
	endTimeUs   uint64
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "hostsim",
	Short: "Parallel discrete-event simulator for networked hosts",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a topology config",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := LoadSimulationConfig(configPath)
		if err != nil {
			logrus.Fatalf("Loading config: %v", err)
		}
		if cmd.Flags().Changed("policy") {
			cfg.Policy = policy
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if cmd.Flags().Changed("end-time") {
			cfg.EndTimeUs = endTimeUs
		}

		s, err := cfg.Build()
		if err != nil {
			logrus.Fatalf("Building simulation: %v", err)
		}

		if metricsAddr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(s.Metrics())
			go func() {
				if err := http.ListenAndServe(metricsAddr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})); err != nil {
					logrus.Warnf("Metrics endpoint: %v", err)
				}
			}()
			logrus.Infof("Serving metrics on %s", metricsAddr)
		}

		if err := s.Run(); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		printSummary(s)
		logrus.Infof("Simulation %s at now=%s", s.Status(), s.Now())
	},
}

func printSummary(s *sim.Scheduler) {
	snap := s.Metrics().Snapshot()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Counter", "Value"})
	table.Append([]string{"Events pushed", fmt.Sprintf("%d", snap.EventsPushed)})
	table.Append([]string{"Events popped", fmt.Sprintf("%d", snap.EventsPopped)})
	table.Append([]string{"Events clamped", fmt.Sprintf("%d", snap.EventsClamped)})
	table.Append([]string{"Packets dropped (path)", fmt.Sprintf("%d", snap.PathDrops)})
	table.Append([]string{"Packets dropped (AQM)", fmt.Sprintf("%d", snap.AQMDrops)})
	table.Append([]string{"Rounds", fmt.Sprintf("%d", snap.Rounds)})
	table.Append([]string{"Round wall time", snap.RoundWall.String()})
	table.Render()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "configs/pingpong.yaml", "Simulation YAML config path")
	runCmd.Flags().StringVar(&policy, "policy", sim.PolicyHostSingle, "Scheduling policy (global-single, host-single, thread-single)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "Worker thread count")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed")
	runCmd.Flags().Uint64Var(&endTimeUs, "end-time", 1000000, "Simulation end time in microseconds")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty = off)")

	rootCmd.AddCommand(runCmd)
}
