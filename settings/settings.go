package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/restartfu/gophig"
)

// Settings contains everything that can be configured for a crease server.
type Settings struct {
	Server struct {
		// Name is the server name shown in the public server list.
		Name string
		// Port is the UDP port the server listens on.
		Port int
		// Public controls whether the server sends heartbeats to the master server.
		Public bool
		// MasterURL is the address used to look up the master server.
		MasterURL string
		// PlayerMax is the maximum number of connected players.
		PlayerMax int
		// TeamMax is the maximum number of players per team.
		TeamMax int
		// Password is the admin password. Empty disables /admin.
		Password string
		// Service is the systemd service name used by /serverrestart. Empty disables it.
		Service string
		// Welcome holds chat lines sent to every player that joins.
		Welcome []string
	}
	Game struct {
		// Mode selects the game mode: "match", "shootout", "russian" or "warmup".
		Mode string
		// TimePeriod, TimeWarmup and TimeIntermission are in centiseconds.
		TimePeriod       int
		TimeWarmup       int
		TimeBreak        int
		TimeIntermission int
		Periods          int
		Mercy            int
		FirstTo          int
		// Icing is "off", "touch" or "notouch".
		Icing string
		// Offside is "off", "delayed" or "immediate".
		Offside string
		// OffsideLine is "blue" or "center".
		OffsideLine string
		// TwoLinePass is "off", "on", "forward", "double" or "threeline".
		TwoLinePass string
		WarmupPucks int
		// Attempts is the number of rounds per team in shootout and russian modes.
		Attempts int
		// SpawnPoint is "center" or "bench".
		SpawnPoint string
		GoalReplay bool
		// UseMph switches goal speed messages from km/h to mph.
		UseMph bool
		// SpawnPointOffset is the distance from the faceoff dot to the
		// center spawn.
		SpawnPointOffset float32
		// SpawnPlayerAltitude and SpawnPuckAltitude are the heights players
		// and pucks drop from at faceoffs.
		SpawnPlayerAltitude float32
		SpawnPuckAltitude   float32
		// SpawnKeepStickPosition keeps the stick pose through faceoff
		// teleports.
		SpawnKeepStickPosition bool
	}
	Physics struct {
		LimitJumpSpeed bool
	}
	Replay struct {
		// Mode is "off", "on" or "standby".
		Mode string
		// Directory is where .hrp files are written when URL is empty.
		Directory string
		// URL, when set, receives sealed replays as a multipart POST.
		URL string
	}
	Debug struct {
		// Verbose enables debug-level logging.
		Verbose bool
		// SentryDSN enables panic reporting when non-empty.
		SentryDSN string
		// StatsAddress serves a statsview dashboard when non-empty, e.g. "localhost:18066".
		StatsAddress string
	}
}

// DefaultSettings returns the settings a freshly generated config file contains.
func DefaultSettings() Settings {
	s := Settings{}
	s.Server.Name = "Crease server"
	s.Server.Port = 27585
	s.Server.MasterURL = "https://sam2.github.io/HQMMasterServerEndpoint/"
	s.Server.PlayerMax = 20
	s.Server.TeamMax = 5

	s.Game.Mode = "match"
	s.Game.TimePeriod = 300 * 100
	s.Game.TimeWarmup = 300 * 100
	s.Game.TimeBreak = 10 * 100
	s.Game.TimeIntermission = 20 * 100
	s.Game.Periods = 3
	s.Game.Icing = "off"
	s.Game.Offside = "off"
	s.Game.OffsideLine = "blue"
	s.Game.TwoLinePass = "off"
	s.Game.WarmupPucks = 8
	s.Game.Attempts = 5
	s.Game.SpawnPoint = "center"
	s.Game.SpawnPointOffset = 2.75
	s.Game.SpawnPlayerAltitude = 2.0
	s.Game.SpawnPuckAltitude = 1.5

	s.Replay.Mode = "off"
	s.Replay.Directory = "replays"
	return s
}

// Load reads the settings file at path, creating it with defaults first if it
// does not exist.
func Load(path string) (Settings, error) {
	g := gophig.NewGophig[Settings](path, gophig.TOMLMarshaler{}, 0644)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := g.SaveConf(DefaultSettings()); err != nil {
			return Settings{}, fmt.Errorf("error creating config: %w", err)
		}
	}
	s, err := g.LoadConf()
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %w", err)
	}
	if s.Server.Name == "" {
		s.Server.Name = "Crease server"
	}
	if s.Server.Port == 0 {
		s.Server.Port = 27585
	}
	if s.Server.PlayerMax <= 0 || s.Server.PlayerMax > 63 {
		s.Server.PlayerMax = 20
	}
	if s.Game.Mode == "" {
		s.Game.Mode = "match"
	}
	s.Game.Mode = strings.ToLower(s.Game.Mode)
	if s.Game.SpawnPlayerAltitude <= 0 {
		s.Game.SpawnPlayerAltitude = 2.0
	}
	if s.Game.SpawnPuckAltitude <= 0 {
		s.Game.SpawnPuckAltitude = 1.5
	}
	return s, nil
}
