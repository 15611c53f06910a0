// guandan 在 redis 上开一张牌桌，四家按最简单的策略自动打完一场比赛，用于检查部署
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/play/guandan/pkg/config"
	"github.com/play/guandan/pkg/guandan"
	"github.com/play/guandan/pkg/hall"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// 通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

func main() {
	var (
		path      = pflag.StringP("config", "c", "", "config file")
		maxRounds = pflag.Int("rounds", 64, "stop after this many rounds")
		pretty    = pflag.Bool("pretty", false, "human readable log")
		_         = pflag.String("log-level", "info", "overrides log.level")
		version   = pflag.BoolP("version", "v", false, "print version")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("Version: %s\nGo Version: %s\nOS: %s/%s\nGit Commit: %s\nBuild Time: %s\n",
			Version, runtime.Version(), runtime.GOOS, runtime.GOARCH, GitCommit, BuildTime)
		return
	}
	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Viper().BindPFlag("log.level", pflag.Lookup("log-level")); err != nil {
		log.Fatal().Err(err).Msg("bind flags")
	}
	cfg.SetupLog()
	log.Info().Str("version", Version).Str("commit", GitCommit).Str("build_time", BuildTime).Msg("build info")

	rdb := cfg.Redis().Client()
	defer rdb.Close()

	h := hall.New(rdb, cfg)
	defer h.Close()

	ctx := log.Logger.WithContext(context.Background())
	if err := run(ctx, h, *maxRounds); err != nil {
		log.Error().Err(err).Msg("self play failed")
		h.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, h *hall.Hall, maxRounds int) error {
	id, _, err := h.Open(ctx)
	if err != nil {
		return err
	}
	logger := log.Ctx(ctx).With().Str("table", id).Logger()

	for round := 0; round < maxRounds; round++ {
		var status guandan.MatchStatus
		events, err := h.Do(ctx, id, func(m *guandan.Match) (guandan.Events, error) {
			es, err := m.StartRound()
			if err != nil {
				return nil, err
			}
			for m.Phase() != guandan.RoundFinished {
				step, err := next(m)
				if err != nil {
					return es, err
				}
				es = append(es, step...)
			}
			status = m.Status
			return es, nil
		})
		if err != nil {
			return fmt.Errorf("round %d: %w", round+1, err)
		}
		if e, ok := events.Find(guandan.EventRoundFinished); ok {
			logger.Info().Int("round", round+1).Stringer("team", e.Team).Int("promotion", e.Promotion).Int("events", len(events)).Msg("round finished")
		}
		if status == guandan.MatchWon {
			e, _ := events.Find(guandan.EventMatchWon)
			logger.Info().Stringer("winner", e.Team).Int("rounds", round+1).Msg("match won")
			return nil
		}
	}
	logger.Warn().Int("rounds", maxRounds).Msg("no winner")
	return nil
}

// next 推进一步：进贡最大的牌，还最小的可还牌，出牌时用最小的能压过的单张，否则过牌
func next(m *guandan.Match) (guandan.Events, error) {
	if m.Phase() == guandan.RoundTribute {
		t := m.Tribute
		if len(t.Pending) > 0 {
			g := t.Pending[0]
			card, ok := guandan.HighestTribute(m.Hands[g.From], m.Wild)
			if !ok {
				return nil, fmt.Errorf("seat %d has nothing to tribute", g.From)
			}
			return m.SubmitTribute(g.From, guandan.Cards{card})
		}
		for _, g := range t.Given {
			if !t.HasReturned(g.To) {
				return m.SubmitReturn(g.To, guandan.ReturnCandidates(m.Hands[g.To], m.Wild)[0])
			}
		}
		return nil, fmt.Errorf("tribute stuck in phase %v", t.Phase)
	}

	seat := m.Round.Turn
	hand := m.Round.Hand(seat)
	for i := len(hand) - 1; i >= 0; i-- {
		if play := (guandan.Cards{hand[i]}); m.Validate(seat, play).OK() {
			return m.Play(seat, play)
		}
	}
	return m.Pass(seat)
}
