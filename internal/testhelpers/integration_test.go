//go:build integration
// +build integration

package testhelpers

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDryRunEmailer_Integration(t *testing.T) {
	cfg := GetIntegrationConfig(t)
	var out bytes.Buffer
	emailer := SetupDryRunEmailer(t, cfg, &out)

	if err := emailer.Run(context.Background(), "integration-run"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	msg := out.String()
	for _, want := range []string{"Subject: Your Daily Weather & Outfit Guide", "X-Run-ID: integration-run"} {
		if !strings.Contains(msg, want) {
			t.Errorf("dry run message missing %q", want)
		}
	}
}
