package cmd

import (
	"testing"
)

func TestLevelColor(t *testing.T) {
	tests := []struct {
		level interface{}
		want  string
	}{
		{"error", "[red]"},
		{"fatal", "[red]"},
		{"warn", "[yellow]"},
		{"debug", "[blue]"},
		{"trace", "[blue]"},
		{"info", "[green]"},
		{nil, "[green]"},
	}

	for _, tt := range tests {
		if got := levelColor(tt.level); got != tt.want {
			t.Errorf("levelColor(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	writer := NewConsoleWriter()
	if _, err := writer.Write([]byte("not json")); err == nil {
		t.Error("expected error for malformed event")
	}
}
