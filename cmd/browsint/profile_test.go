package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gianlucabassani/browsint/internal/config"
	"github.com/gianlucabassani/browsint/internal/model"
)

func TestProfileCommandRejectsUnknownType(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"profile", "--type", "ip", "10.0.0.1"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown target type") {
		t.Errorf("Execute() error = %v, want unknown target type", err)
	}
}

type staticKeys map[string]string

func (k staticKeys) Key(service string) string { return k[service] }

func TestNewAdapterRegistryCoversEveryTargetType(t *testing.T) {
	t.Parallel()

	keys := staticKeys{
		config.ServiceHunterIO: "hk",
		config.ServiceHIBP:     "bk",
		config.ServiceShodan:   "sk",
	}
	registry := newAdapterRegistry(&http.Client{}, keys)

	tests := []struct {
		targetType model.TargetType
		want       []string
	}{
		{model.TargetDomain, []string{"whois", "dns", "reputation", "wayback"}},
		{model.TargetEmail, []string{"emailverify", "breach"}},
		{model.TargetUsername, []string{"socialpresence"}},
	}

	for _, tt := range tests {
		adapters := registry.For(tt.targetType)
		names := make(map[string]bool, len(adapters))
		for _, a := range adapters {
			names[a.Name()] = true
		}
		for _, want := range tt.want {
			if !names[want] {
				t.Errorf("For(%s) missing adapter %q", tt.targetType, want)
			}
		}
	}
}

func TestPrintProfileSummary(t *testing.T) {
	t.Parallel()

	profile := model.NewTargetProfile(model.EnrichmentQuery{Type: model.TargetDomain, Value: "corp.io"})
	profile.Fields["dns"] = model.FieldResult{Status: model.FieldOK, Elapsed: 12 * time.Millisecond}
	profile.Fields["reputation"] = model.FieldResult{Status: model.FieldDisabled}
	profile.Fields["whois"] = model.FieldResult{Status: model.FieldError, Error: "connection refused"}
	profile.CompletedAt = time.Now()

	var out bytes.Buffer
	printProfileSummary(&out, profile)

	for _, want := range []string{"corp.io", "dns", "disabled (no API key)", "connection refused"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}
