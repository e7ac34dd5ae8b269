package main

import (
	"strings"
	"testing"

	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		w, h int
		ok   bool
	}{
		{"640x360", 640, 360, true},
		{"64X36", 64, 36, true},
		{"0x10", 0, 0, false},
		{"wide", 0, 0, false},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err == nil) != tt.ok || w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %d, %d, %v", tt.in, w, h, err)
		}
	}
}

func TestHUDModeLine(t *testing.T) {
	s := scene.New(scene.DefaultConfig())
	mesh := render.NewMesh("body", nil, nil, nil)
	s.Add(scene.NewObject("body", mesh, false, render.DefaultSettings()))

	hud := NewHUD(s)
	line := hud.modeLine()
	for _, want := range []string{"BackFace", "Combined", "Nearest", "[✓] normal"} {
		if !strings.Contains(line, want) {
			t.Errorf("mode line %q does not contain %q", line, want)
		}
	}
	if hud.title != "body" {
		t.Errorf("title = %q, want body", hud.title)
	}
}
