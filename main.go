package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/ban"
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/gamemode"
	"github.com/crease-gg/crease/record"
	"github.com/crease-gg/crease/server"
	"github.com/crease-gg/crease/settings"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the settings file")
	banPath := flag.String("bans", "", "path to the ban list file, empty keeps bans in memory")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	cfg, err := settings.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Could not load settings")
	}
	if cfg.Debug.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if cfg.Debug.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.Debug.SentryDSN,
			Release: server.Version,
		}); err != nil {
			log.WithError(err).Fatal("Could not initialize sentry")
		}
		defer sentry.Flush(2 * time.Second)
		defer sentry.Recover()
	}

	if cfg.Debug.StatsAddress != "" {
		viewer.SetConfiguration(viewer.WithAddr(cfg.Debug.StatsAddress))
		mgr := statsview.New()
		go mgr.Start()
	}

	behaviour, err := buildBehaviour(cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not build game mode")
	}

	var bans ban.Checker
	if *banPath != "" {
		fileBans, err := ban.NewFile(log, *banPath)
		if err != nil {
			log.WithError(err).Fatal("Could not load ban list")
		}
		bans = fileBans
	} else {
		bans = ban.NewInMemory()
	}

	var saver record.Saver
	if cfg.Replay.URL != "" {
		saver = record.HTTPSaver{URL: cfg.Replay.URL}
	} else {
		saver = record.FileSaver{Dir: cfg.Replay.Directory}
	}

	physCfg := game.DefaultPhysicsConfig()
	physCfg.LimitJumpSpeed = cfg.Physics.LimitJumpSpeed

	serverCfg := server.Config{
		Welcome:        cfg.Server.Welcome,
		Password:       cfg.Server.Password,
		PlayerMax:      cfg.Server.PlayerMax,
		ReplaysEnabled: parseReplayMode(cfg.Replay.Mode),
		ServerName:     cfg.Server.Name,
		ServerService:  cfg.Server.Service,
	}
	if cfg.Server.Public {
		serverCfg.Public = cfg.Server.MasterURL
	}

	s := server.New(log, serverCfg, physCfg, behaviour, bans, saver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx, uint16(cfg.Server.Port)); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func buildBehaviour(cfg settings.Settings) (server.Behaviour, error) {
	spawnPoint, _ := gamemode.ParseSpawnPoint(cfg.Game.SpawnPoint)

	switch cfg.Game.Mode {
	case "match":
		return gamemode.NewStandardMatch(matchConfiguration(cfg), cfg.Server.TeamMax, spawnPoint), nil
	case "shootout":
		return gamemode.NewShootout(uint32(cfg.Game.Attempts)), nil
	case "russian":
		return gamemode.NewRussianPucks(uint32(cfg.Game.Attempts), cfg.Server.TeamMax), nil
	case "warmup":
		return gamemode.NewPermanentWarmup(cfg.Game.WarmupPucks, spawnPoint), nil
	}
	return nil, fmt.Errorf("unknown game mode %q", cfg.Game.Mode)
}

func matchConfiguration(cfg settings.Settings) gamemode.MatchConfiguration {
	icing := gamemode.IcingOff
	switch cfg.Game.Icing {
	case "touch", "on":
		icing = gamemode.IcingTouch
	case "notouch":
		icing = gamemode.IcingNoTouch
	}
	offside := gamemode.OffsideOff
	switch cfg.Game.Offside {
	case "delayed", "on":
		offside = gamemode.OffsideDelayed
	case "immediate", "imm":
		offside = gamemode.OffsideImmediate
	}
	offsideLine := gamemode.OffsideLineBlue
	if cfg.Game.OffsideLine == "center" {
		offsideLine = gamemode.OffsideLineCenter
	}
	twoLinePass := gamemode.TwoLinePassOff
	switch cfg.Game.TwoLinePass {
	case "on":
		twoLinePass = gamemode.TwoLinePassOn
	case "forward":
		twoLinePass = gamemode.TwoLinePassForward
	case "double", "both":
		twoLinePass = gamemode.TwoLinePassDouble
	case "blue", "three", "threeline":
		twoLinePass = gamemode.TwoLinePassThreeLine
	}

	return gamemode.MatchConfiguration{
		TimePeriod:       uint32(cfg.Game.TimePeriod),
		TimeWarmup:       uint32(cfg.Game.TimeWarmup),
		TimeBreak:        uint32(cfg.Game.TimeBreak),
		TimeIntermission: uint32(cfg.Game.TimeIntermission),
		Mercy:            uint32(cfg.Game.Mercy),
		FirstTo:          uint32(cfg.Game.FirstTo),
		Periods:          uint32(cfg.Game.Periods),
		Offside:          offside,
		Icing:            icing,
		OffsideLine:      offsideLine,
		TwoLinePass:      twoLinePass,
		WarmupPucks:      cfg.Game.WarmupPucks,
		UseMph:           cfg.Game.UseMph,
		GoalReplay:       cfg.Game.GoalReplay,

		SpawnPointOffset:       cfg.Game.SpawnPointOffset,
		SpawnPlayerAltitude:    cfg.Game.SpawnPlayerAltitude,
		SpawnPuckAltitude:      cfg.Game.SpawnPuckAltitude,
		SpawnKeepStickPosition: cfg.Game.SpawnKeepStickPosition,
	}
}

func parseReplayMode(mode string) server.ReplayMode {
	switch mode {
	case "on":
		return server.ReplayOn
	case "standby":
		return server.ReplayStandby
	}
	return server.ReplayOff
}
