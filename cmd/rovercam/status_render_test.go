package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Camera", statusOK, "ready", false)
	if !strings.Contains(line, "Camera:") || !strings.Contains(line, "[OK] ready") {
		t.Fatalf("line = %q", line)
	}

	colored := renderStatusLine("Camera", statusError, "gone", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colored = %q", colored)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Rover Link", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Rover Link ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatal("rule length should match header length")
	}
}

func TestBoolKind(t *testing.T) {
	if boolKind(true, statusError) != statusOK {
		t.Fatal("true should map to OK")
	}
	if boolKind(false, statusWarn) != statusWarn {
		t.Fatal("false should map to the fallback kind")
	}
}
