package gamemode

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

func TestAddTouchMergesRepeatedPossession(t *testing.T) {
	puck := game.NewPuck(mgl32.Vec3{10, 0.5, 20}, mgl32.Ident3())
	puck.Body.Vel = mgl32.Vec3{0.02, 0, 0}

	var touches []puckTouch
	touches = addTouch(touches, puck, pid(3), game.TeamRed, 25000)
	touches = addTouch(touches, puck, pid(3), game.TeamRed, 24900)
	if len(touches) != 1 {
		t.Fatalf("repeated touches by the same player = %d entries, want 1", len(touches))
	}
	if touches[0].firstTime != 25000 || touches[0].lastTime != 24900 {
		t.Errorf("merged touch times = %d..%d, want 25000..24900", touches[0].firstTime, touches[0].lastTime)
	}

	touches = addTouch(touches, puck, pid(7), game.TeamBlue, 24800)
	if len(touches) != 2 {
		t.Fatalf("new toucher = %d entries, want 2", len(touches))
	}
	if touches[0].player != pid(7) {
		t.Error("newest touch must be first")
	}

	// A team change counts as a new possession even for the same player.
	touches = addTouch(touches, puck, pid(7), game.TeamRed, 24700)
	if len(touches) != 3 {
		t.Fatalf("team change = %d entries, want 3", len(touches))
	}
}

func TestAddTouchTruncatesHistory(t *testing.T) {
	puck := game.NewPuck(mgl32.Vec3{10, 0.5, 20}, mgl32.Ident3())

	var touches []puckTouch
	for i := 0; i < 40; i++ {
		touches = addTouch(touches, puck, pid(i%30), game.TeamRed, uint32(30000-i))
	}
	if len(touches) > 16 {
		t.Errorf("history length = %d, want at most 16", len(touches))
	}
}

func TestSaturatingSub(t *testing.T) {
	if got := saturatingSub(5, 3); got != 2 {
		t.Errorf("saturatingSub(5, 3) = %d", got)
	}
	if got := saturatingSub(3, 5); got != 0 {
		t.Errorf("saturatingSub(3, 5) = %d, want 0", got)
	}
	if got := saturatingSub(0, 1); got != 0 {
		t.Errorf("saturatingSub(0, 1) = %d, want 0", got)
	}
}

func TestConvertSpeed(t *testing.T) {
	speed, unit := convertSpeed(0.05, false)
	if unit != "km/h" {
		t.Errorf("unit = %q, want km/h", unit)
	}
	if speed < 17.9 || speed > 18.1 {
		t.Errorf("0.05 m/tick = %v km/h, want 18", speed)
	}

	speed, unit = convertSpeed(0.05, true)
	if unit != "mph" {
		t.Errorf("unit = %q, want mph", unit)
	}
	if speed < 11.1 || speed > 11.3 {
		t.Errorf("0.05 m/tick = %v mph, want about 11.18", speed)
	}
}

func TestContainsId(t *testing.T) {
	ids := []game.PlayerId{pid(1), pid(4)}
	if !containsId(ids, pid(4)) {
		t.Error("pid(4) should be found")
	}
	if containsId(ids, pid(2)) {
		t.Error("pid(2) should not be found")
	}
}

func TestAttemptsMessage(t *testing.T) {
	if got := attemptsMessage(5, game.TeamRed); got != "5 attempts left for Red" {
		t.Errorf("got %q", got)
	}
	if got := attemptsMessage(1, game.TeamBlue); got != "Last attempt for Blue" {
		t.Errorf("got %q", got)
	}
	if got := attemptsMessage(0, game.TeamRed); got != "Tie-breaker round for Red" {
		t.Errorf("got %q", got)
	}
}
