package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrraes/bewijs/internal/export"
	"github.com/mrraes/bewijs/internal/format"
	appI18n "github.com/mrraes/bewijs/internal/i18n"
	"github.com/mrraes/bewijs/internal/model"
	"github.com/mrraes/bewijs/internal/prompt"
	"github.com/mrraes/bewijs/internal/render"
	"github.com/mrraes/bewijs/internal/stamp"
	"github.com/mrraes/bewijs/internal/store"
	"github.com/mrraes/bewijs/internal/summary"
)

func loadConfig(v *viper.Viper) model.Config {
	return model.Config{
		Addr:          v.GetString("addr"),
		Lang:          v.GetString("lang"),
		Timezone:      v.GetString("timezone"),
		DPR:           v.GetFloat64("dpr"),
		OutDir:        v.GetString("out-dir"),
		GameID:        v.GetString("game-id"),
		FontRegular:   v.GetString("font-regular"),
		FontBold:      v.GetString("font-bold"),
		QR:            v.GetBool("qr"),
		QRSecret:      v.GetString("qr-secret"),
		EncodeTimeout: v.GetDuration("encode-timeout"),
		MaxPixels:     v.GetInt64("max-pixels"),
		PrefsBackend:  strings.ToLower(v.GetString("prefs-backend")),
		DBPath:        v.GetString("db"),
		RedisAddr:     v.GetString("redis-addr"),
		RedisPassword: v.GetString("redis-password"),
		RedisDB:       v.GetInt("redis-db"),
		RedisPrefix:   v.GetString("redis-prefix"),
	}
}

// app holds the wired components shared by the commands.
type app struct {
	ctx      context.Context // carries the localizer
	prefs    store.Prefs
	finisher *export.Finisher
}

func newApp(ctx context.Context, cfg model.Config) (*app, error) {
	if err := appI18n.Init(cfg.Lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	lctx := appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(cfg.Lang))

	fonts, err := render.LoadFonts(cfg.FontRegular, cfg.FontBold)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	prefs, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}

	labels := appI18n.RenderLabels(lctx)
	r := &render.Renderer{
		Fonts:    fonts,
		Labels:   &labels,
		DPR:      cfg.DPR,
		Location: format.LoadZone(cfg.Timezone),
	}
	if cfg.QR {
		if cfg.QRSecret == "" {
			slog.Warn("verification stamp enabled without a secret; stamps can be forged")
		}
		r.Stamp = stamp.Signer([]byte(cfg.QRSecret))
	}

	var reader summary.PrefReader
	if prefs != nil {
		reader = prefs
	}
	f := &export.Finisher{
		Normalizer:    &summary.Normalizer{Identity: summary.Standard(reader, cfg.GameID)},
		Renderer:      r,
		Downloader:    export.DirDownloader{Dir: cfg.OutDir},
		Location:      time.Local,
		EncodeTimeout: cfg.EncodeTimeout,
		MaxPixels:     cfg.MaxPixels,
	}
	return &app{ctx: lctx, prefs: prefs, finisher: f}, nil
}

func (a *app) Close() {
	if a.prefs != nil {
		if err := a.prefs.Close(); err != nil {
			slog.Warn("close prefs", "error", err)
		}
	}
}

// ask runs the terminal prompt on stdin/stdout.
func (a *app) ask(ctx context.Context, mode model.Mode, toggles []prompt.Toggle) (prompt.Result, error) {
	var prefs prompt.Prefs
	if a.prefs != nil {
		prefs = a.prefs
	}
	p := prompt.New(prefs, prompt.Options{Mode: mode, Toggles: toggles})
	term := &prompt.Terminal{In: os.Stdin, Out: os.Stderr, Texts: appI18n.PromptTexts(a.ctx)}
	return term.Run(ctx, p)
}

// parseToggles reads toggle declarations of the form id[:label[:on]].
func parseToggles(specs []string) ([]prompt.Toggle, error) {
	var out []prompt.Toggle
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 3)
		t := prompt.Toggle{ID: strings.TrimSpace(parts[0])}
		if t.ID == "" {
			return nil, fmt.Errorf("toggle %q: empty id", s)
		}
		if len(parts) > 1 {
			t.Label = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			switch strings.ToLower(strings.TrimSpace(parts[2])) {
			case "on", "true", "1", "ja", "yes":
				t.Checked = true
			case "off", "false", "0", "nee", "no", "":
			default:
				return nil, fmt.Errorf("toggle %q: unknown state %q", s, parts[2])
			}
		}
		out = append(out, t)
	}
	return out, nil
}
