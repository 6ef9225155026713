package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatterbox-sdk/chatterbox-sdk-go/chatterbox"
)

var rootCmd = &cobra.Command{
	Use:   "chatterbox [page-url]",
	Short: "Terminal client for chatterbox rooms",
	Long: `chatterbox joins the room named by the page URL fragment,
e.g. 'chatterbox http://localhost:8000/#lobby', and renders the live log.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var (
	flagConfig         string
	flagStreamURL      string
	flagCSRFToken      string
	flagKeepalive      time.Duration
	flagReconnectDelay time.Duration
	flagRequestTimeout time.Duration
	flagMaxLogEntries  int
	flagLogFile        string
	flagLogLevel       string
	flagMetricsAddr    string
)

func init() {
	defaults := chatterbox.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&flagConfig, "config", defaultConfigPath(), "path to the chatterbox config file")
	flags.StringVar(&flagStreamURL, "stream-url", "", "override the event stream URL (ws:// or wss:// selects WebSocket)")
	flags.StringVar(&flagCSRFToken, "csrf-token", os.Getenv("CHATTERBOX_CSRF_TOKEN"), "anti-forgery token used when no csrftoken cookie is set")
	flags.DurationVar(&flagKeepalive, "keepalive", defaults.KeepaliveInterval, "interval between roster refreshes")
	flags.DurationVar(&flagReconnectDelay, "reconnect-delay", time.Second, "pause before reopening a closed stream (0 reconnects immediately)")
	flags.DurationVar(&flagRequestTimeout, "request-timeout", defaults.RequestTimeout, "timeout for each posted command")
	flags.IntVar(&flagMaxLogEntries, "max-log", defaults.MaxLogEntries, "number of log entries kept on screen")
	flags.StringVar(&flagLogFile, "log-file", "", "write diagnostics to this file")
	flags.StringVar(&flagLogLevel, "log-level", "info", "diagnostic log level")
	flags.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute chatterbox command")
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	fc, err := loadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, fc)

	page := fc.Page
	if len(args) == 1 {
		page = args[0]
	}
	roomURL, err := chatterbox.RoomURL(page)
	if err != nil {
		return fmt.Errorf("room from %q: %w", page, err)
	}

	logger, closeLog, err := newLogger(fc.LogFile, fc.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := chatterbox.DefaultConfig()
	cfg.RoomURL = roomURL
	cfg.StreamURL = fc.StreamURL
	cfg.CSRFToken = fc.CSRFToken
	cfg.KeepaliveInterval = fc.Keepalive
	cfg.ReconnectDelay = *fc.ReconnectDelay
	cfg.RequestTimeout = fc.RequestTimeout
	cfg.MaxLogEntries = fc.MaxLogEntries

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}
	transport, err := chatterbox.NewHTTPTransport(cfg.RoomURL, cfg.CSRFToken, &http.Client{Jar: jar, Timeout: cfg.RequestTimeout})
	if err != nil {
		return err
	}
	streamURL := cfg.StreamURL
	if streamURL == "" {
		streamURL = cfg.RoomURL
	}
	subscriber, err := chatterbox.NewSubscriber(streamURL, &http.Client{Jar: jar})
	if err != nil {
		return err
	}
	roomLog := chatterbox.NewLog(cfg.MaxLogEntries, nil)

	session, err := chatterbox.NewSession(cfg, transport, subscriber, roomLog)
	if err != nil {
		return err
	}
	session.SetLogger(chatterbox.NewZerologLogger(logger))

	if fc.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		session.SetMetrics(chatterbox.NewMetrics(reg))
		srv := serveMetrics(fc.MetricsAddr, reg, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	p := tea.NewProgram(newModel(ctx, session, roomLog, roomURL), tea.WithAltScreen(), tea.WithContext(ctx))
	roomLog.OnChange(func() { p.Send(logChangedMsg{}) })
	session.OnStateChanged(func(ev chatterbox.StateEvent) { p.Send(stateMsg(ev)) })
	session.OnError(func(err error) { p.Send(errMsg{err: err}) })

	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(ctx) }()

	_, uiErr := p.Run()
	_ = session.Close()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("[chat] session stopped")
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	logger.Info().Msg("[chat] shutdown complete")
	return nil
}

// applyFlags overlays explicitly set flags, and defaults for unset fields,
// onto the file config.
func applyFlags(cmd *cobra.Command, fc *fileConfig) {
	set := cmd.Flags().Changed
	if set("stream-url") || fc.StreamURL == "" {
		fc.StreamURL = flagStreamURL
	}
	if set("csrf-token") || fc.CSRFToken == "" {
		fc.CSRFToken = flagCSRFToken
	}
	if set("keepalive") || fc.Keepalive == 0 {
		fc.Keepalive = flagKeepalive
	}
	// an explicit zero in the file means reconnect immediately
	if set("reconnect-delay") || fc.ReconnectDelay == nil {
		d := flagReconnectDelay
		fc.ReconnectDelay = &d
	}
	if set("request-timeout") || fc.RequestTimeout == 0 {
		fc.RequestTimeout = flagRequestTimeout
	}
	if set("max-log") || fc.MaxLogEntries == 0 {
		fc.MaxLogEntries = flagMaxLogEntries
	}
	if set("log-file") || fc.LogFile == "" {
		fc.LogFile = flagLogFile
	}
	if set("log-level") || fc.LogLevel == "" {
		fc.LogLevel = flagLogLevel
	}
	if set("metrics-addr") || fc.MetricsAddr == "" {
		fc.MetricsAddr = flagMetricsAddr
	}
}

// newLogger writes to path, or discards output since the UI owns the
// terminal.
func newLogger(path, level string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("log level %q: %w", level, err)
	}
	var out io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), closeFn, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn().Err(err).Msg("[chat] metrics server stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("[chat] serving metrics")
	return srv
}
