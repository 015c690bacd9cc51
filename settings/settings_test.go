package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Server.Port != 27585 {
		t.Errorf("default port = %d", s.Server.Port)
	}
	if s.Game.Mode != "match" {
		t.Errorf("default mode = %q", s.Game.Mode)
	}
	if s.Game.TimePeriod != 300*100 {
		t.Errorf("default period time = %d ticks", s.Game.TimePeriod)
	}
	if s.Game.SpawnPointOffset != 2.75 {
		t.Errorf("default spawn offset = %v", s.Game.SpawnPointOffset)
	}
	if s.Game.SpawnPlayerAltitude != 2.0 || s.Game.SpawnPuckAltitude != 1.5 {
		t.Errorf("default spawn altitudes = %v, %v", s.Game.SpawnPlayerAltitude, s.Game.SpawnPuckAltitude)
	}
	if s.Replay.Mode != "off" {
		t.Errorf("default replay mode = %q", s.Replay.Mode)
	}
}

func TestLoadCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	if s.Server.Name != "Crease server" {
		t.Errorf("name = %q", s.Server.Name)
	}
	if s.Game.Mode != "match" {
		t.Errorf("mode = %q", s.Game.Mode)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := []byte("[Server]\nName = \"\"\nPort = 0\nPlayerMax = 200\n\n[Game]\nMode = \"SHOOTOUT\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Server.Name != "Crease server" {
		t.Errorf("empty name not defaulted, got %q", s.Server.Name)
	}
	if s.Server.Port != 27585 {
		t.Errorf("zero port not defaulted, got %d", s.Server.Port)
	}
	if s.Server.PlayerMax != 20 {
		t.Errorf("out-of-range player max not defaulted, got %d", s.Server.PlayerMax)
	}
	if s.Game.Mode != "shootout" {
		t.Errorf("mode not lowercased, got %q", s.Game.Mode)
	}
	if s.Game.SpawnPlayerAltitude != 2.0 {
		t.Errorf("missing spawn altitude not defaulted, got %v", s.Game.SpawnPlayerAltitude)
	}
}
