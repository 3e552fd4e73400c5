package main

import (
	"testing"
	"time"
)

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"endpoint", "timeout", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %q", name)
		}
	}
	if f := rootCmd.Flags().Lookup("copy"); f == nil || f.Shorthand != "c" {
		t.Error("Expected --copy/-c flag")
	}
	if got := rootCmd.PersistentFlags().Lookup("timeout").DefValue; got != (60 * time.Second).String() {
		t.Errorf("Expected 1m0s default timeout, got %s", got)
	}
}

func TestPromptSubcommand(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"prompt"})
	if err != nil || cmd != promptCmd {
		t.Errorf("Expected prompt subcommand, got %v, %v", cmd, err)
	}
}

func TestSetup_EndpointFromEnv(t *testing.T) {
	t.Setenv("GENERATOR_URL", "http://example.test/generate-bio")
	endpoint = ""
	defer func() { endpoint = "" }()

	if err := setup(rootCmd, nil); err != nil {
		t.Fatal(err)
	}
	if endpoint != "http://example.test/generate-bio" {
		t.Errorf("Expected endpoint from env, got %q", endpoint)
	}
}
