package log

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

func TestConfigureIsOnceAndStructured(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "stylekit-test"})
	// A second Configure must not rewire the logger.
	Configure(Config{Output: io.Discard, Service: "other"})

	logger := WithComponent("doctor")
	logger.Info().Str("path", "package.json").Msg("checked")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["service"] != "stylekit-test" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["component"] != "doctor" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["message"] != "checked" {
		t.Errorf("message = %v", entry["message"])
	}
}
