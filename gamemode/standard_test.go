package gamemode

import "testing"

func TestParseClock(t *testing.T) {
	tests := []struct {
		arg  string
		want uint32
		ok   bool
	}{
		{"5:00", 30000, true},
		{"0:30", 3000, true},
		{"1:30.5", 9050, true},
		{"1:30.55", 9055, true},
		{"0:00.01", 1, true},
		{"10:00", 60000, true},
		{"300", 0, false},
		{"a:00", 0, false},
		{"1:bb", 0, false},
		{"1:00.xx", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.arg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseClock(%q) = %d, %v, want %d, %v", tt.arg, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseSpawnPoint(t *testing.T) {
	if sp, ok := ParseSpawnPoint("bench"); !ok || sp != SpawnBench {
		t.Errorf("ParseSpawnPoint(bench) = %v, %v", sp, ok)
	}
	if sp, ok := ParseSpawnPoint("center"); !ok || sp != SpawnCenter {
		t.Errorf("ParseSpawnPoint(center) = %v, %v", sp, ok)
	}
	if _, ok := ParseSpawnPoint("roof"); ok {
		t.Error("ParseSpawnPoint(roof) should fail")
	}
}

func TestParseGoalLimit(t *testing.T) {
	if n, ok := parseGoalLimit("off"); !ok || n != 0 {
		t.Errorf("parseGoalLimit(off) = %d, %v", n, ok)
	}
	if n, ok := parseGoalLimit("7"); !ok || n != 7 {
		t.Errorf("parseGoalLimit(7) = %d, %v", n, ok)
	}
	if _, ok := parseGoalLimit("-3"); ok {
		t.Error("parseGoalLimit(-3) should fail")
	}
	if _, ok := parseGoalLimit("many"); ok {
		t.Error("parseGoalLimit(many) should fail")
	}
}
