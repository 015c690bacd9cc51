package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSideOfLine(t *testing.T) {
	line := RinkLine{Z: 30.5, Width: 0.3}

	tests := []struct {
		name   string
		z      float32
		radius float32
		want   SideOfLine
	}{
		{"well past on red side", 32.0, 0.125, SideRed},
		{"well past on blue side", 29.0, 0.125, SideBlue},
		{"centered on line", 30.5, 0.125, SideOn},
		{"touching from red side", 30.5 + 0.15 + 0.1, 0.125, SideOn},
		{"clear of line on red side", 30.5 + 0.15 + 0.13, 0.125, SideRed},
		{"touching from blue side", 30.5 - 0.3 - 0.1, 0.125, SideOn},
		{"clear of line on blue side", 30.5 - 0.3 - 0.13, 0.125, SideBlue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := line.SideOfLine(mgl32.Vec3{15, 0, tt.z}, tt.radius)
			if got != tt.want {
				t.Errorf("SideOfLine(z=%v) = %v, want %v", tt.z, got, tt.want)
			}
		})
	}
}

func TestSideForTeam(t *testing.T) {
	if got := SideForTeam(TeamRed, SideRed); got != SideRed {
		t.Errorf("red team keeps red side, got %v", got)
	}
	if got := SideForTeam(TeamBlue, SideRed); got != SideBlue {
		t.Errorf("blue team flips red side, got %v", got)
	}
	if got := SideForTeam(TeamBlue, SideOn); got != SideOn {
		t.Errorf("on stays on, got %v", got)
	}
}

func TestRinkLines(t *testing.T) {
	rink := NewRink(30, 61, 8.5)
	if rink.CenterLine.Z != 30.5 {
		t.Errorf("center line z = %v, want 30.5", rink.CenterLine.Z)
	}
	if rink.RedZoneBlueLine.Z <= rink.CenterLine.Z {
		t.Error("red zone blue line must be on the red half")
	}
	if rink.BlueZoneBlueLine.Z >= rink.CenterLine.Z {
		t.Error("blue zone blue line must be on the blue half")
	}

	if rink.DefensiveLine(TeamRed) != &rink.RedZoneBlueLine {
		t.Error("red defends the red zone blue line")
	}
	if rink.OffensiveLine(TeamRed) != &rink.BlueZoneBlueLine {
		t.Error("red attacks across the blue zone blue line")
	}
}
