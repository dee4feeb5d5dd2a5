package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner"
	"github.com/weehong/appwrite-database-cloner/cloner/schema"
	"github.com/weehong/appwrite-database-cloner/config"
	"github.com/weehong/appwrite-database-cloner/errors"
	"github.com/weehong/appwrite-database-cloner/log"
	"github.com/weehong/appwrite-database-cloner/metrics"
	"github.com/weehong/appwrite-database-cloner/report"
	"github.com/weehong/appwrite-database-cloner/util"
)

// MetricsShutdownTimeout bounds the metrics listener teardown.
const MetricsShutdownTimeout = 3 * time.Second

// contextKey is a type for context keys used in this package.
type contextKey string

// configContextKey is the context key for storing *config.Config.
const configContextKey contextKey = "config"

var (
	Version   = "v1.2.0" //nolint:gochecknoglobals
	GitCommit = ""       //nolint:gochecknoglobals
	BuildTime = ""       //nolint:gochecknoglobals
)

func buildVersion() string {
	return Version + " " + GitCommit + " " + BuildTime
}

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "appwrite-database-cloner",
	Short: "Replicate an Appwrite database's schema and documents to another instance",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		logLevel, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			logLevel = zerolog.InfoLevel
		}

		lg := log.InitGlobals(logLevel, cfg.Log.JSON, cfg.Log.NoColor)
		ctx := lg.WithContext(cmd.Context())
		ctx = context.WithValue(ctx, configContextKey, cfg)
		cmd.SetContext(ctx)

		if cfg.Log.NoColor {
			color.NoColor = true
		}

		return nil
	},

	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		err := config.Validate(cfg)
		if err != nil {
			return errors.Wrap(err, "validate options")
		}

		mode, err := cloner.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}

		log.Ctx(cmd.Context()).Info("Appwrite Database Cloner " + buildVersion())

		if mode.Destructive() && !cfg.Yes && !confirmClean(cfg) {
			log.New("cli").Info("Aborted")

			return nil
		}

		return run(cmd.Context(), cfg, mode)
	},
}

//nolint:gochecknoglobals
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		info := fmt.Sprintf("Version:   %s\nGitCommit: %s\nBuildTime: %s\nGoVersion: %s",
			Version,
			GitCommit,
			BuildTime,
			runtime.Version(),
		)

		cmd.Println(info)
	},
}

//nolint:gochecknoglobals
var exportCmd = &cobra.Command{
	Use:   "export <collection-id>",
	Short: "Export a source collection's sanitized documents as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		// export only reads the source side
		switch {
		case cfg.SourceEndpoint == "":
			return errors.New("source endpoint is empty")
		case cfg.SourceProject == "":
			return errors.New("source project is empty")
		case cfg.SourceKey == "":
			return errors.New("source API key is empty")
		case cfg.SourceDatabase == "":
			return errors.New("source database id is empty")
		}

		return runExport(cmd, cfg, args[0])
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output log in JSON format")
	rootCmd.PersistentFlags().Bool("log-no-color", false, "Disable log color")

	rootCmd.PersistentFlags().String("source-endpoint", "", "Source API endpoint (e.g. https://cloud.appwrite.io/v1)")
	rootCmd.PersistentFlags().String("source-project", "", "Source project id")
	rootCmd.PersistentFlags().String("source-key", "", "Source API key")
	rootCmd.PersistentFlags().String("source-database", "", "Source database id")

	rootCmd.PersistentFlags().String("dest-endpoint", "", "Destination API endpoint")
	rootCmd.PersistentFlags().String("dest-project", "", "Destination project id")
	rootCmd.PersistentFlags().String("dest-key", "", "Destination API key")
	rootCmd.PersistentFlags().String("dest-database", "", "Destination database id")

	rootCmd.PersistentFlags().Int("page-size", config.DefaultPageSize, "Page size for listing calls")
	rootCmd.PersistentFlags().String("http-timeout", config.DefaultHTTPTimeout.String(),
		"Timeout for API calls (e.g. 30s, 2m)")

	rootCmd.Flags().String("mode", "full", "Replication mode: full, structure, data, or missing")
	rootCmd.Flags().StringToString("unique-key", nil,
		"Unique-identifier field per collection for missing mode (e.g. users=email)")
	rootCmd.Flags().StringSlice("include-collections", nil,
		"Collections to include (by id or name)")
	rootCmd.Flags().StringSlice("exclude-collections", nil,
		"Collections to exclude (by id or name)")

	rootCmd.Flags().String("snapshot", config.DefaultSnapshotPath, "Path of the intermediate snapshot file")
	rootCmd.Flags().Bool("resume", false, "Consume an existing snapshot instead of re-fetching")
	rootCmd.Flags().BoolP("yes", "y", false, "Skip the destructive-clean confirmation")

	rootCmd.Flags().Int("metrics-port", 0, "Serve Prometheus metrics on this port during the run")

	rootCmd.Flags().String("poll-interval", config.DefaultPollInterval.String(), "")
	rootCmd.Flags().MarkHidden("poll-interval") //nolint:errcheck

	rootCmd.Flags().Int("attribute-poll-attempts", config.DefaultAttributePollAttempts, "")
	rootCmd.Flags().MarkHidden("attribute-poll-attempts") //nolint:errcheck

	rootCmd.Flags().Int("index-poll-attempts", config.DefaultIndexPollAttempts, "")
	rootCmd.Flags().MarkHidden("index-poll-attempts") //nolint:errcheck

	exportCmd.Flags().StringP("output", "o", "-", "Output file (- for stdout)")

	rootCmd.AddCommand(
		versionCmd,
		exportCmd,
	)

	err := rootCmd.Execute()
	if err != nil {
		zerolog.Ctx(context.Background()).Fatal().Err(err).Msg("")
	}
}

// confirmClean asks for explicit confirmation before the destructive clean.
// Declining is a clean, non-error exit.
func confirmClean(cfg *config.Config) bool {
	color.New(color.FgYellow).Fprintf(os.Stderr,
		"This run deletes ALL collections in destination database %q (project %q) first.\n",
		cfg.DestDatabase, cfg.DestProject)
	fmt.Fprint(os.Stderr, "Continue? [y/N]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func run(ctx context.Context, cfg *config.Config, mode cloner.Mode) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	source := appwrite.NewClient(cfg.SourceEndpoint, cfg.SourceProject, cfg.SourceKey,
		cfg.HTTPTimeout)
	dest := appwrite.NewClient(cfg.DestEndpoint, cfg.DestProject, cfg.DestKey,
		cfg.HTTPTimeout)

	promRegistry := prometheus.NewRegistry()
	metrics.Init(promRegistry)

	if cfg.MetricsPort != 0 {
		stopMetrics := serveMetrics(cfg.MetricsPort, promRegistry)
		defer stopMetrics()
	}

	cl := cloner.New(source, dest, &cloner.Options{
		Mode:           mode,
		SourceDatabase: cfg.SourceDatabase,
		DestDatabase:   cfg.DestDatabase,
		PageSize:       cfg.PageSize,
		UniqueKeys:     cfg.UniqueKeys,
		Include:        cfg.Include,
		Exclude:        cfg.Exclude,
		SnapshotPath:   cfg.Snapshot,
		Resume:         cfg.Resume,
		AttributePoll: schema.Poll{
			Interval: cfg.Poll.Interval,
			Attempts: cfg.Poll.AttributeAttempts,
		},
		IndexPoll: schema.Poll{
			Interval: cfg.Poll.Interval,
			Attempts: cfg.Poll.IndexAttempts,
		},
	})

	cl.SetObserver(progressObserver())

	res, err := cl.Run(ctx)
	if err != nil {
		return err
	}

	report.PrintSummary(os.Stdout, res)

	if res.Failed() {
		return errors.New("replication completed with failures")
	}

	return nil
}

// progressObserver renders a progress bar over each collection's document
// write queue.
func progressObserver() cloner.Observer {
	var bar *progressbar.ProgressBar

	return cloner.Observer{
		OnWriteStart: func(collection string, documents int) {
			bar = nil
			if documents > 0 {
				fmt.Fprintf(os.Stderr, "Writing %d documents to %q\n", documents, collection)
				bar = progressbar.New(documents)
			}
		},
		OnDocumentDone: func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	}
}

func serveMetrics(port int, registry *prometheus.Registry) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.New("metrics").Error(err, "Metrics listener")
		}
	}()

	log.New("metrics").Infof("Serving metrics at http://%s/metrics", srv.Addr)

	return func() {
		err := util.WithTimeout(context.Background(), MetricsShutdownTimeout, srv.Shutdown)
		if err != nil {
			log.New("metrics").Error(err, "Shutdown metrics listener")
		}
	}
}

func runExport(cmd *cobra.Command, cfg *config.Config, collectionID string) error {
	ctx := cmd.Context()

	client := appwrite.NewClient(cfg.SourceEndpoint, cfg.SourceProject, cfg.SourceKey,
		cfg.HTTPTimeout)

	docs, err := appwrite.FetchAll(ctx, cfg.PageSize,
		func(d appwrite.Document) string { return d.ID() },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Document, error) {
			list, err := client.ListDocuments(ctx, cfg.SourceDatabase, collectionID, queries...)
			if err != nil {
				return nil, err
			}

			return list.Documents, nil
		})
	if err != nil {
		return errors.Wrap(err, "fetch documents")
	}

	output, _ := cmd.Flags().GetString("output")

	w := os.Stdout

	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrap(err, "create output file")
		}
		defer f.Close()

		w = f
	}

	err = report.WriteCSV(w, docs)
	if err != nil {
		return errors.Wrap(err, "write csv")
	}

	log.New("cli").With(log.Count(int64(len(docs)))).
		Infof("Exported %d documents from %q", len(docs), collectionID)

	return nil
}
