package xp

import (
	"math"
	"testing"
)

func TestQualityMultiplier(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     float64
	}{
		{1.0, 1.5},
		{0.95, 1.5},
		{0.9499, 1.2},
		{0.85, 1.2},
		{0.8499, 1.0},
		{0.70, 1.0},
		{0.6999, 0.8},
		{0.0, 0.8},
		{-0.2, 0.8},
		{1.7, 1.5},
		{math.NaN(), 0.8},
	}

	for _, tt := range tests {
		got := QualityMultiplier(tt.accuracy)
		if got != tt.want {
			t.Errorf("QualityMultiplier(%v) = %v, want %v", tt.accuracy, got, tt.want)
		}
	}
}

func TestStreakBonus(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{-3, 1.0},
		{0, 1.0},
		{6, 1.0},
		{7, 1.2},
		{13, 1.2},
		{14, 1.5},
		{29, 1.5},
		{30, 2.0},
		{400, 2.0},
	}

	for _, tt := range tests {
		got := StreakBonus(tt.days)
		if got != tt.want {
			t.Errorf("StreakBonus(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestDifficulty_Multiplier(t *testing.T) {
	tests := []struct {
		d    Difficulty
		want float64
	}{
		{DifficultyBeginner, 1.0},
		{DifficultyIntermediate, 1.3},
		{DifficultyAdvanced, 1.6},
		{DifficultyExpert, 2.0},
		{"", 1.0},
		{"impossible", 1.0},
	}

	for _, tt := range tests {
		if got := tt.d.Multiplier(); got != tt.want {
			t.Errorf("Difficulty(%q).Multiplier() = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestActivityType_BaseXP(t *testing.T) {
	tests := []struct {
		a    ActivityType
		want int
	}{
		{ActivityMaterialCompletion, 100},
		{ActivityProblemSolved, 25},
		{ActivityConceptMastered, 150},
		{ActivityHelpPeer, 75},
		{ActivityCreativeWork, 200},
		{ActivityReflection, 50},
		{"", 0},
		{"nap", 0},
	}

	for _, tt := range tests {
		if got := tt.a.BaseXP(); got != tt.want {
			t.Errorf("ActivityType(%q).BaseXP() = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	for _, a := range AllActivityTypes() {
		if !a.Known() {
			t.Errorf("%q should be known", a)
		}
	}
	if ActivityType("nap").Known() {
		t.Error("nap should not be a known activity")
	}
	for _, d := range AllDifficulties() {
		if !d.Known() {
			t.Errorf("%q should be known", d)
		}
	}
	if Difficulty("easy").Known() {
		t.Error("easy should not be a known difficulty")
	}
}

func TestDisplayName_FallsBackToRaw(t *testing.T) {
	if got := ActivityType("nap").DisplayName(); got != "nap" {
		t.Errorf("DisplayName = %q, want %q", got, "nap")
	}
	if got := Difficulty("easy").DisplayName(); got != "easy" {
		t.Errorf("DisplayName = %q, want %q", got, "easy")
	}
}
