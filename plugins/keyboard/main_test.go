package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		want    string
		wantErr bool
	}{
		{"up", `{"key":"up"}`, "up", false},
		{"left", `{"key":"left"}`, "left", false},
		{"missing key", `{}`, "", true},
		{"no params", ``, "", true},
		{"unsupported key", `{"key":"space"}`, "", true},
		{"bad json", `{"key":`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKey(json.RawMessage(tt.params))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPressCommand(t *testing.T) {
	t.Run("darwin uses key codes", func(t *testing.T) {
		cmd, err := pressCommand("darwin", "up")
		if err != nil {
			t.Fatalf("pressCommand() error = %v", err)
		}
		if got := strings.Join(cmd.Args, " "); !strings.HasSuffix(got, "key code 126") {
			t.Errorf("args = %q", got)
		}
	})

	t.Run("linux uses xdotool keysyms", func(t *testing.T) {
		cmd, err := pressCommand("linux", "right")
		if err != nil {
			t.Fatalf("pressCommand() error = %v", err)
		}
		if got := strings.Join(cmd.Args, " "); got != "xdotool key Right" {
			t.Errorf("args = %q", got)
		}
	})

	t.Run("other systems are rejected", func(t *testing.T) {
		if _, err := pressCommand("windows", "up"); err == nil {
			t.Error("expected error on windows")
		}
	})
}
