package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/agent"
	"isogrid-server/internal/engine"
	"isogrid-server/internal/infrastructure/storage"
	"isogrid-server/internal/server"
	"isogrid-server/internal/version"
	"isogrid-server/pkg/levels"
	"isogrid-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг флагов
	var (
		configPath string
		seed       int64
		replayPath string
		bots       int
		replayTail uint64
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config (empty = defaults + env)")
	flag.Int64Var(&seed, "seed", 0, "Master seed (0 = from config or random)")
	flag.StringVar(&replayPath, "replay", "", "Path to "+storage.FileExt+" journal to re-simulate")
	flag.IntVar(&bots, "bots", -1, "Number of headless bots (-1 = from config)")
	flag.Uint64Var(&replayTail, "tail", 50, "Extra ticks simulated after the last journaled action")
	flag.Parse()

	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config: ", err)
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if bots >= 0 {
		cfg.Bots = bots
	}
	logger.InitWith(cfg.Log.Level, cfg.Log.Format)

	logger.Log.Info("Starting isogrid server...")
	logger.Log.Info(version.String())

	lvls, err := loadLevels(cfg.LevelsDir)
	if err != nil {
		logger.Log.Fatal("Failed to load levels: ", err)
	}

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		logger.Log.Info("💿 Mode: Replay Simulation")
		if err := runReplay(replayPath, lvls, cfg.Sim, replayTail); err != nil {
			logger.Log.Fatal("Replay failed: ", err)
		}
		return
	}

	logger.Log.Infof("🎲 Master Seed: %d", cfg.Seed)

	// 2. Инициализация ядра с конфигом
	gameService, err := engine.NewService(cfg, lvls)
	if err != nil {
		logger.Log.Fatal("Failed to create game service: ", err)
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait := gameService.Start(ctx)

	for n := 0; n < cfg.Bots; n++ {
		bot, err := agent.NewBot(gameService, fmt.Sprintf("bot-%d", n+1), cfg.Seed+int64(n)+1)
		if err != nil {
			logger.Log.WithError(err).Warn("Bot could not join")
			continue
		}
		go bot.Run(ctx)
	}

	// 3. Запуск сервера
	srv := server.New(gameService, cfg.Port)
	if err := srv.Run(ctx); err != nil {
		logger.Log.WithError(err).Error("Server stopped with error")
		stop()
	}

	logger.Log.Info("Shutting down...")
	wait()

	saveJournals(gameService, cfg.JournalDir)
	logger.Log.Info("Done.")
}

func loadLevels(dir string) (map[int]*levels.Level, error) {
	if dir == "" {
		logger.Log.Info("No levels_dir configured, using built-in levels")
		return levels.Builtin(), nil
	}
	return levels.LoadDir(dir)
}

// saveJournals сохраняет журнал ввода каждого уровня, где что-то происходило.
func saveJournals(gameService *engine.GameService, dir string) {
	if dir == "" {
		return
	}
	replays, err := storage.NewReplayService(dir)
	if err != nil {
		logger.Log.WithError(err).Error("Journal dir unavailable")
		return
	}
	for _, id := range gameService.LevelIDs() {
		inst, _ := gameService.Instance(id)
		if len(inst.Journal.Actions) == 0 {
			continue
		}
		path, err := replays.Save(inst.Journal)
		if err != nil {
			logger.Log.WithError(err).WithField("level", id).Error("Failed to save journal")
			continue
		}
		logger.Log.WithFields(logrus.Fields{
			"level":   id,
			"actions": len(inst.Journal.Actions),
			"path":    path,
		}).Info("Journal saved")
	}
}

func runReplay(path string, lvls map[int]*levels.Level, sim engine.SimConfig, tail uint64) error {
	session, err := storage.LoadFile(path)
	if err != nil {
		return err
	}
	level, ok := lvls[session.LevelID]
	if !ok {
		return fmt.Errorf("journal level %d: %w", session.LevelID, engine.ErrUnknownLevel)
	}

	inst, err := engine.Replay(session, level, sim, tail)
	if err != nil {
		return err
	}

	for _, a := range inst.Snapshot().Actors {
		entry := logger.Log.WithFields(logrus.Fields{
			"id":    a.ID,
			"kind":  a.Kind,
			"cell":  fmt.Sprintf("(%d,%d)", a.Cell.X, a.Cell.Y),
			"state": a.State,
		})
		if a.Stats != nil {
			entry = entry.WithField("hp", a.Stats.HP)
		}
		entry.Info("Final actor state")
	}
	return nil
}
