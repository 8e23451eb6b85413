package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
)

func createValidContent() *Content {
	return &Content{
		Name:        "Test Content",
		Description: "Test bundle",
		Memory:      MemoryContent{Images: []string{"a", "b"}},
		Quiz: QuizContent{Questions: []quiz.Question{
			{Prompt: "Yes?", Options: []string{"yes", "no"}, Correct: 0},
		}},
		Maze: MazeContent{Layout: []string{"S.", ".G"}},
		Puzzle: PuzzleContent{
			Tiles: []puzzle.TileSpec{{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"}},
		},
		Finale: FinaleContent{Letter: "Hello", SecretQuestion: "Will you?"},
	}
}

func writeContentFile(t *testing.T, dir, name string, content any) {
	t.Helper()
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal content: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write content file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		if err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("built-in only", func(t *testing.T) {
		m, err := NewManager("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if m.GetDefault().Name != Default().Name {
			t.Errorf("Expected built-in default, got %s", m.GetDefault().Name)
		}
	})

	t.Run("default file overrides built-in", func(t *testing.T) {
		dir := t.TempDir()
		writeContentFile(t, dir, DefaultContentID, createValidContent())

		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if m.GetDefault().Name != "Test Content" {
			t.Errorf("Expected file default, got %s", m.GetDefault().Name)
		}
	})

	t.Run("invalid default file falls back", func(t *testing.T) {
		dir := t.TempDir()
		broken := createValidContent()
		broken.Memory.Images = nil
		writeContentFile(t, dir, DefaultContentID, broken)

		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if m.GetDefault().Name != Default().Name {
			t.Errorf("Expected built-in fallback, got %s", m.GetDefault().Name)
		}
	})
}

func TestLoadContent(t *testing.T) {
	dir := t.TempDir()
	writeContentFile(t, dir, "valid", createValidContent())
	broken := createValidContent()
	broken.Maze.Layout = []string{"S#", "#G"}
	writeContentFile(t, dir, "unwinnable", broken)
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", "valid", nil},
		{"valid with extension", "valid.json", nil},
		{"built-in", DefaultContentID, nil},
		{"not found", "missing", ErrContentNotFound},
		{"path traversal", "../valid", ErrContentNotFound},
		{"unreachable goal", "unwinnable", ErrInvalidContent},
		{"malformed json", "garbage", ErrInvalidContent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			content, err := m.LoadContent(test.content)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Errorf("Expected %v, got %v", test.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if content == nil {
				t.Fatal("Expected content")
			}
		})
	}

	first, _ := m.LoadContent("valid")
	second, _ := m.LoadContent("valid")
	if first != second {
		t.Error("Expected cached content to be reused")
	}
}

func TestListContent(t *testing.T) {
	dir := t.TempDir()
	writeContentFile(t, dir, "quick", createValidContent())
	broken := createValidContent()
	broken.Name = ""
	writeContentFile(t, dir, "broken", broken)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := m.ListContent()
	if err != nil {
		t.Fatalf("ListContent failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 bundles (default + quick), got %d", len(infos))
	}
	if infos[0].ContentID != DefaultContentID || infos[1].ContentID != "quick" {
		t.Errorf("Unexpected listing order: %s, %s", infos[0].ContentID, infos[1].ContentID)
	}

	quick := infos[1]
	if quick.Pairs != 2 || quick.Questions != 1 || quick.MazeRows != 2 || quick.MazeCols != 2 || quick.Tiles != 4 {
		t.Errorf("Unexpected summary %+v", quick)
	}
	if quick.Filename != "quick.json" {
		t.Errorf("Expected quick.json, got %s", quick.Filename)
	}
}

func TestSaveContent(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := m.SaveContent("saved", createValidContent()); err != nil {
		t.Fatalf("SaveContent failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	m.RefreshCache()
	loaded, err := m.LoadContent("saved")
	if err != nil {
		t.Fatalf("Failed to reload saved content: %v", err)
	}
	if loaded.Name != "Test Content" {
		t.Errorf("Expected Test Content, got %s", loaded.Name)
	}

	invalid := createValidContent()
	invalid.Quiz.Questions = nil
	if err := m.SaveContent("bad", invalid); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("Expected ErrInvalidContent, got %v", err)
	}
	if err := m.SaveContent("../escape", createValidContent()); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("Expected ErrInvalidContent for bad name, got %v", err)
	}

	builtin, _ := NewManager("")
	if err := builtin.SaveContent("x", createValidContent()); err == nil {
		t.Error("Expected error saving without a content directory")
	}
}

func TestSetDefault(t *testing.T) {
	dir := t.TempDir()
	writeContentFile(t, dir, "quick", createValidContent())
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SetDefault("quick"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.GetDefault().Name != "Test Content" {
		t.Errorf("Default not updated")
	}
	if err := m.SetDefault("missing"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound, got %v", err)
	}
}

func TestConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeContentFile(t, dir, "quick", createValidContent())
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadContent("quick"); err != nil {
				t.Errorf("Concurrent load failed: %v", err)
			}
			m.GetDefault()
		}()
	}
	wg.Wait()
}

func TestValidateContent(t *testing.T) {
	if err := ValidateContent(Default()); err != nil {
		t.Fatalf("Built-in content is invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Content)
		engine bool
	}{
		{"missing name", func(c *Content) { c.Name = "" }, false},
		{"duplicate image", func(c *Content) { c.Memory.Images = []string{"a", "a"} }, true},
		{"bad correct index", func(c *Content) { c.Quiz.Questions[0].Correct = 5 }, true},
		{"two starts", func(c *Content) { c.Maze.Layout = []string{"SS", ".G"} }, true},
		{"negative threshold", func(c *Content) { c.Maze.SwipeThreshold = -1 }, false},
		{"single tile", func(c *Content) { c.Puzzle.Tiles = c.Puzzle.Tiles[:1] }, true},
		{"missing letter", func(c *Content) { c.Finale.Letter = "" }, false},
		{"missing secret", func(c *Content) { c.Finale.SecretQuestion = "" }, false},
		{"delay too long", func(c *Content) { c.Timing.AnswerDelayMS = 60000 }, false},
		{"negative delay", func(c *Content) { c.Timing.MismatchDelayMS = -1 }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := createValidContent()
			test.mutate(c)
			err := ValidateContent(c)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if test.engine && !errors.Is(err, engine.ErrInvalidConfig) {
				t.Errorf("Expected engine construction error, got %v", err)
			}
		})
	}
}

func TestTimingDefaults(t *testing.T) {
	var timing Timing
	if timing.MismatchDelay() != engine.DefaultMismatchDelay || timing.AnswerDelay() != engine.DefaultAnswerDelay {
		t.Error("Zero timing should use engine defaults")
	}
	timing = Timing{MismatchDelayMS: 250, AnswerDelayMS: 500}
	if timing.MismatchDelay().Milliseconds() != 250 || timing.AnswerDelay().Milliseconds() != 500 {
		t.Errorf("Unexpected delays %v / %v", timing.MismatchDelay(), timing.AnswerDelay())
	}
	if (MazeContent{}).Threshold() != engine.DefaultSwipeThreshold {
		t.Error("Zero threshold should use the engine default")
	}
}
