package main

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/hearthlabs/hearth/internal/config"
)

func TestParseCommonFlags(t *testing.T) {
	f, err := parseCommonFlags([]string{"--parser", "rule-based", "--addr", ":9090", "3", "bed", "homes"})
	if err != nil {
		t.Fatalf("parseCommonFlags: %v", err)
	}
	if f.parserKind != "rule-based" {
		t.Errorf("parserKind = %q, want rule-based", f.parserKind)
	}
	if f.addr != ":9090" {
		t.Errorf("addr = %q, want :9090", f.addr)
	}
	if got := len(f.rest); got != 3 {
		t.Errorf("rest has %d args, want 3", got)
	}
}

func TestParseCommonFlagsMissingValue(t *testing.T) {
	if _, err := parseCommonFlags([]string{"--parser"}); err == nil {
		t.Fatal("expected error for --parser without a value")
	}
}

func TestParseCommonFlagsUnknownFlag(t *testing.T) {
	if _, err := parseCommonFlags([]string{"--bogus", "x"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestBuildServiceStatic(t *testing.T) {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: t.TempDir() + "/absent.yaml",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	svc, closer, err := buildService(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("buildService: %v", err)
	}
	if closer != nil {
		t.Error("static provider should not need a closer")
	}

	res, err := svc.Interpret(context.Background(), "main-test", "3 bed homes in Denver under 700k", true)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if res.Page.Total == 0 {
		t.Error("expected results for the seeded Denver inventory")
	}
}

func TestBuildServiceFileAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HEARTH_PARSER", "")

	path := t.TempDir() + "/config.yaml"
	content := "parser: openai\nllm:\n  api_key: sk-from-file\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if _, _, err := buildService(cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("buildService should honor the file key: %v", err)
	}
}

func TestBuildServiceUnknownProvider(t *testing.T) {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath:  t.TempDir() + "/absent.yaml",
		CLIProvider: "dynamo",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if _, _, err := buildService(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
