package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MaxPairs", MaxPairs, 32},
		{"MinTiles", MinTiles, 2},
		{"MinGridSize", MinGridSize, 2},
		{"MaxGridSize", MaxGridSize, 50},
		{"MinOptions", MinOptions, 2},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}

	if DefaultMismatchDelay != time.Second {
		t.Errorf("Expected mismatch delay 1s, got %v", DefaultMismatchDelay)
	}
	if DefaultAnswerDelay != 1500*time.Millisecond {
		t.Errorf("Expected answer delay 1.5s, got %v", DefaultAnswerDelay)
	}
}

func TestParseGameID(t *testing.T) {
	tests := []struct {
		input    string
		expected GameID
		wantErr  bool
	}{
		{"memory", Memory, false},
		{"QUIZ", Quiz, false},
		{" maze ", Maze, false},
		{"Puzzle", Puzzle, false},
		{"chess", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			id, err := ParseGameID(test.input)
			if test.wantErr {
				if !errors.Is(err, ErrUnknownGame) {
					t.Errorf("Expected ErrUnknownGame, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, id)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"up", Up, false},
		{"DOWN", Down, false},
		{"ArrowLeft", Left, false},
		{"arrowright", Right, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			d, err := ParseDirection(test.input)
			if test.wantErr {
				if !errors.Is(err, ErrUnknownDirection) {
					t.Errorf("Expected ErrUnknownDirection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if d != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, d)
			}
		})
	}
}

func TestPositionStep(t *testing.T) {
	origin := Position{Row: 2, Col: 2}
	tests := []struct {
		dir      Direction
		expected Position
	}{
		{Up, Position{Row: 1, Col: 2}},
		{Down, Position{Row: 3, Col: 2}},
		{Left, Position{Row: 2, Col: 1}},
		{Right, Position{Row: 2, Col: 3}},
		{Direction("diagonal"), origin},
	}

	for _, test := range tests {
		if got := origin.Step(test.dir); got != test.expected {
			t.Errorf("%s: expected %+v, got %+v", test.dir, test.expected, got)
		}
	}

	if Direction("diagonal").Valid() {
		t.Error("Expected unknown direction to be invalid")
	}
	for _, d := range Directions {
		if !d.Valid() {
			t.Errorf("Expected %s to be valid", d)
		}
	}
}

func TestPositionJSON(t *testing.T) {
	data, err := json.Marshal(Position{Row: 3, Col: 7})
	if err != nil {
		t.Fatalf("Failed to marshal position: %v", err)
	}
	if string(data) != `{"row":3,"col":7}` {
		t.Errorf("Unexpected JSON: %s", data)
	}
}

func TestConfigErrorf(t *testing.T) {
	err := ConfigErrorf("memory: %d keys", 0)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected error to wrap ErrInvalidConfig")
	}
	if err.Error() != "invalid configuration: memory: 0 keys" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
