// Command keyboard is a posecontrol plugin that taps an arrow key.
// It reads one JSON request from stdin and writes one JSON response to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PressParams names the key to tap.
type PressParams struct {
	Key string `json:"key"`
}

// macOS virtual key codes.
var appleKeyCodes = map[string]int{
	"left":  123,
	"right": 124,
	"down":  125,
	"up":    126,
}

// X11 keysyms for xdotool.
var xKeysyms = map[string]string{
	"left":  "Left",
	"right": "Right",
	"down":  "Down",
	"up":    "Up",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "press" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	key, err := parseKey(req.Params)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	cmd, err := pressCommand(runtime.GOOS, key)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("press %s: %v: %s", key, err, output)})
		return
	}

	data, _ := json.Marshal(map[string]string{"key": key})
	writeResponse(Response{Success: true, Data: data})
}

func parseKey(params json.RawMessage) (string, error) {
	var p PressParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if p.Key == "" {
		return "", fmt.Errorf("key is required")
	}
	if _, ok := xKeysyms[p.Key]; !ok {
		return "", fmt.Errorf("unsupported key: %s", p.Key)
	}
	return p.Key, nil
}

// pressCommand builds the OS command that taps key.
func pressCommand(goos, key string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		script := `tell application "System Events" to key code ` + strconv.Itoa(appleKeyCodes[key])
		return exec.Command("osascript", "-e", script), nil
	case "linux":
		return exec.Command("xdotool", "key", xKeysyms[key]), nil
	}
	return nil, fmt.Errorf("key presses are not supported on %s", goos)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
