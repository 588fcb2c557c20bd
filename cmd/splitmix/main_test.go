package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/model"
	"github.com/handiism/splitmix/internal/split"
)

func TestApplySession(t *testing.T) {
	dir := t.TempDir()
	err := config.SaveMetadata(dir, &config.SessionMetadata{
		Artist: "Video Title",
		Album:  "Video Title",
		Title:  "Video Title",
		Source: "/work/run/input.wav",
		Cover:  "/work/run/cover.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}

	req := split.Request{Job: split.Job{Metadata: model.Metadata{Artist: "Given Artist"}}}
	if err := applySession(dir, &req); err != nil {
		t.Fatalf("applySession() error = %v", err)
	}

	if req.Artist != "Given Artist" {
		t.Errorf("Artist = %q, flags should win", req.Artist)
	}
	if req.Album != "Video Title" || req.SourcePath != "/work/run/input.wav" || req.CoverPath != "/work/run/cover.jpg" {
		t.Errorf("request = %+v", req)
	}
}

func TestApplySession_Missing(t *testing.T) {
	var req split.Request
	if err := applySession(t.TempDir(), &req); err == nil {
		t.Error("applySession() without metadata.json should fail")
	}
}

func TestReadTracklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.txt")
	if err := os.WriteFile(path, []byte("0:00 - Intro\n"), 0644); err != nil {
		t.Fatal(err)
	}

	text, err := readTracklist(path)
	if err != nil || text != "0:00 - Intro\n" {
		t.Errorf("readTracklist() = %q, %v", text, err)
	}

	if _, err := readTracklist(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("readTracklist() on a missing file should fail")
	}
}
