package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mrraes/bewijs/internal/export"
	"github.com/mrraes/bewijs/internal/handler"
	appI18n "github.com/mrraes/bewijs/internal/i18n"
	"github.com/mrraes/bewijs/internal/prompt"
	"github.com/mrraes/bewijs/internal/stamp"
	"github.com/mrraes/bewijs/internal/store"
	"github.com/mrraes/bewijs/internal/summary"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bewijs",
		Short: "Render proof-of-completion certificates for exercise sessions",
	}

	serve := serveCmd()
	root.AddCommand(serve, finishCmd(), tableCmd(), askCmd(), verifyCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `bewijs --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// commonFlags are shared by every command that renders or reads the prefill.
func commonFlags(f *pflag.FlagSet) {
	f.StringP("lang", "l", appI18n.DefaultLang, "Label language (nl, en)")
	f.String("timezone", "Europe/Brussels", "Time zone for the date on certificates")
	f.Float64("dpr", 1, "Device pixel ratio; images are rendered at ceil(dpr) times the logical size")
	f.StringP("out-dir", "o", ".", "Directory exported images are written to")
	f.String("game-id", "", "Game id used when the summary and page carry none")
	f.String("font-regular", "", "TrueType font for regular and medium text (default: Go fonts)")
	f.String("font-bold", "", "TrueType font for bold text (default: Go fonts)")
	f.Bool("qr", false, "Add a verification QR stamp to certificates")
	f.String("qr-secret", "", "Key for the verification stamp (or set BEWIJS_QR_SECRET)")
	f.Duration("encode-timeout", 30*time.Second, "Maximum time for PNG encoding (0 = no limit)")
	f.Int64("max-pixels", export.DefaultMaxPixels, "Largest image rendered, in physical pixels")
	f.String("prefs-backend", "sqlite", "Prefill store (sqlite, redis, none)")
	f.String("db", "bewijs.db", "SQLite database path")
	f.String("redis-addr", "localhost:6379", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.String("redis-prefix", "bewijs:", "Redis key prefix")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP export server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	commonFlags(f)
	return cmd
}

func finishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finish [summary.json]",
		Short: "Render the certificate for a session summary (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFinish,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.String("page-meta", "", "Game id published by the host page")
	f.String("page-title", "", "Title of the host page")
	f.String("page-url", "", "URL of the host page")
	f.Bool("ask", false, "Ask for name and class before rendering")
	f.StringArray("toggle", nil, "Extra prompt toggle as id[:label[:on]] (repeatable, implies --ask)")
	return cmd
}

func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [export.json]",
		Short: "Render a table export from {meta|options, table, filename} JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTable,
	}
	commonFlags(cmd.Flags())
	return cmd
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask for name and class and print the result as JSON",
		RunE:  runAsk,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.String("mode", "taak", "Session mode shown in the prompt title (taak, toets)")
	f.StringArray("toggle", nil, "Extra toggle as id[:label[:on]] (repeatable)")
	f.Bool("forget", false, "Forget the remembered name and class instead of asking")
	f.Bool("list", false, "Print the stored preferences as JSON instead of asking")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <payload>",
		Short: "Check a scanned verification stamp",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
	f := cmd.Flags()
	f.String("qr-secret", "", "Key for the verification stamp (or set BEWIJS_QR_SECRET)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("BEWIJS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("bewijs")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/bewijs")
	v.AddConfigPath("/etc/bewijs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	cfg := loadConfig(viperForCmd(cmd))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	h := handler.New(a.finisher, a.prefs)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(cfg.Lang))
	h.Routes(r)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	slog.Info("starting server",
		"addr", cfg.Addr,
		"lang", cfg.Lang,
		"out_dir", cfg.OutDir,
		"prefs", cfg.PrefsBackend,
		"dpr", cfg.DPR,
		"qr", cfg.QR,
	)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}
	a.finisher.Wait()
	return nil
}

func runFinish(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	cfg := loadConfig(v)
	ctx := context.Background()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	specs, _ := cmd.Flags().GetStringArray("toggle")
	toggles, err := parseToggles(specs)
	if err != nil {
		return err
	}
	ask := v.GetBool("ask") || len(toggles) > 0
	if ask && readsStdin(args) {
		return errors.New("--ask and --toggle read answers from stdin; pass the summary as a file")
	}

	var raw summary.Raw
	if err := readJSON(args, &raw); err != nil {
		return err
	}
	if ask {
		mode, _ := raw["mode"].(string)
		res, err := a.ask(ctx, summary.ParseMode(mode), toggles)
		if err != nil {
			return err
		}
		if res.Kind == prompt.KindCancelled {
			fmt.Fprintln(cmd.ErrOrStderr(), appI18n.T(a.ctx, "Cancelled"))
			return nil
		}
		raw = export.ApplyPrompt(raw, res)
	}

	ctx = summary.WithPage(ctx, summary.Page{
		Meta:  v.GetString("page-meta"),
		Title: v.GetString("page-title"),
		URL:   v.GetString("page-url"),
	})
	res, err := a.finisher.Finish(ctx, raw)
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), savedLine(a.ctx, res, "QuestionCount"))
	return nil
}

func runTable(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	cfg := loadConfig(viperForCmd(cmd))
	ctx := context.Background()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var req export.TableRequest
	if err := readJSON(args, &req); err != nil {
		return err
	}
	res, err := a.finisher.DownloadTable(ctx, req.Export())
	if err != nil {
		return fmt.Errorf("table export: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), savedLine(a.ctx, res, "RowCount"))
	return nil
}

func runAsk(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	cfg := loadConfig(v)
	ctx := context.Background()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if v.GetBool("forget") {
		if a.prefs == nil {
			return nil
		}
		return store.Forget(ctx, a.prefs)
	}
	if v.GetBool("list") {
		return writePrefs(ctx, cmd.OutOrStdout(), a.prefs)
	}

	specs, _ := cmd.Flags().GetStringArray("toggle")
	toggles, err := parseToggles(specs)
	if err != nil {
		return err
	}
	res, err := a.ask(ctx, summary.ParseMode(v.GetString("mode")), toggles)
	if err != nil {
		return err
	}

	var out any
	switch res.Kind {
	case prompt.KindCancelled:
		out = nil
	case prompt.KindSimple:
		out = res.Name
	default:
		out = map[string]any{"name": res.Name, "class": res.Class, "flags": res.Flags}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runVerify(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if !stamp.Verify(args[0], []byte(v.GetString("qr-secret"))) {
		return errors.New("stamp does not verify")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// savedLine reports an export with its row count, e.g. "... opgeslagen als x.png (3 vragen)".
func savedLine(ctx context.Context, res export.Result, countID string) string {
	saved := appI18n.Td(ctx, "Saved", map[string]any{"Filename": res.Filename})
	return saved + " (" + appI18n.Tp(ctx, countID, res.Rows) + ")"
}

// writePrefs prints every stored preference as a JSON object. A nil store prints {}.
func writePrefs(ctx context.Context, w io.Writer, p store.Prefs) error {
	prefs := map[string]string{}
	if p != nil {
		var err error
		if prefs, err = p.ListPrefs(ctx); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(prefs)
}

func readsStdin(args []string) bool {
	return len(args) == 0 || args[0] == "-"
}

// readJSON decodes the file named by args[0], or stdin when there is none or it is "-".
func readJSON(args []string, v any) error {
	var r io.Reader = os.Stdin
	name := "stdin"
	if !readsStdin(args) {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r, name = f, args[0]
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
