package gamemode

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

func pid(index int) game.PlayerId {
	return game.PlayerId{Index: game.PlayerIndex(index)}
}

func TestSetupPositions(t *testing.T) {
	tests := []struct {
		name        string
		preferences []string
		want        []string
	}{
		{"single player without preference", []string{""}, []string{"C"}},
		{"single center", []string{"C"}, []string{"C"}},
		{"single winger still takes center", []string{"LW"}, []string{"C"}},
		{"single goalie still takes center", []string{"G"}, []string{"C"}},
		{"center and winger", []string{"C", "LW"}, []string{"C", "LW"}},
		{"no preference and winger", []string{"", "LW"}, []string{"C", "LW"}},
		{"two wingers", []string{"RW", "LW"}, []string{"C", "LW"}},
		{"goalie and winger", []string{"G", "LW"}, []string{"G", "C"}},
		{"two centers", []string{"C", "C"}, []string{"C", "LW"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := make([]playerPreference, len(tt.preferences))
			for i, pref := range tt.preferences {
				players[i] = playerPreference{id: pid(i), position: pref}
			}
			positions := make(map[game.PlayerId]assignment)
			setupPositions(positions, players, game.TeamRed)

			for i, want := range tt.want {
				got, ok := positions[pid(i)]
				if !ok {
					t.Fatalf("player %d has no position", i)
				}
				if got.position != want {
					t.Errorf("player %d position = %q, want %q", i, got.position, want)
				}
				if got.team != game.TeamRed {
					t.Errorf("player %d team = %v, want red", i, got.team)
				}
			}
		})
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		arg  string
		want string
		ok   bool
	}{
		{"c", "C", true},
		{"lw", "LW", true},
		{"LW", "LW", true},
		{"rrd", "RRD", true},
		{"xx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizePosition(tt.arg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("normalizePosition(%q) = %q, %v, want %q, %v", tt.arg, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFaceoffLayoutCenter(t *testing.T) {
	rink := game.NewRink(30, 61, 8.5)
	l := faceoffLayout(rink, centerSpot(), 2.75, 2.0)

	if l.center != (mgl32.Vec3{15, 0, 30.5}) {
		t.Fatalf("center spot = %v, want ice center", l.center)
	}

	redC, ok := l.red["C"]
	if !ok {
		t.Fatal("red C spawn missing")
	}
	if redC.pos.Z() != 30.5+2.75 {
		t.Errorf("red C z = %v, want %v", redC.pos.Z(), 30.5+2.75)
	}
	if redC.pos.Y() != 2.0 {
		t.Errorf("red C altitude = %v, want 2", redC.pos.Y())
	}

	blueC, ok := l.blue["C"]
	if !ok {
		t.Fatal("blue C spawn missing")
	}
	if blueC.pos.Z() != 30.5-2.75 {
		t.Errorf("blue C z = %v, want %v", blueC.pos.Z(), 30.5-2.75)
	}

	redG := l.red["G"]
	if redG.pos.Z() != 61-5 {
		t.Errorf("red goalie z = %v, want 56", redG.pos.Z())
	}
	blueG := l.blue["G"]
	if blueG.pos.Z() != 5 {
		t.Errorf("blue goalie z = %v, want 5", blueG.pos.Z())
	}
}
