package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ashureev/biogen/internal/clipboard"
	"github.com/ashureev/biogen/internal/generator"
	"github.com/ashureev/biogen/internal/session"
	"github.com/ashureev/biogen/internal/tui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	endpoint   string
	timeout    time.Duration
	copyResult bool
	verbose    bool
)

// rootCmd fills the form interactively and generates the bio.
var rootCmd = &cobra.Command{
	Use:   "biogen",
	Short: "Generate a LinkedIn bio from the terminal",
	Long: `Asks for profession, tone, experience, focus and skills, sends the
prompt to the bio generation backend and prints the result.

The backend URL defaults to $GENERATOR_URL (a .env file is honoured).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

// promptCmd prints the prompt without calling the backend.
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Fill the form and print the prompt that would be sent",
	RunE:  runPrompt,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "bio generation endpoint (default $GENERATOR_URL or "+generator.DefaultEndpoint+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "HTTP timeout for the generation request")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVarP(&copyResult, "copy", "c", false, "copy the generated bio to the clipboard without asking")

	rootCmd.AddCommand(promptCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if endpoint == "" {
		endpoint = os.Getenv("GENERATOR_URL")
	}
	return nil
}

func newController() *session.Controller {
	gen := generator.NewClient(endpoint, generator.WithTimeout(timeout), generator.WithLogger(slog.Default()))

	clip := clipboard.Disabled()
	if clipboard.Supported() {
		clip = clipboard.System()
	}
	return session.NewController(gen, session.WithClipboard(clip))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ctrl := newController()
	defer ctrl.Close()

	runner := tui.NewRunner(tui.NewSurveyDriver(cmd.OutOrStdout()), ctrl)
	if _, err := runner.Run(ctx, copyResult); err != nil {
		slog.Debug("Bio generation ended with error", "error", err)
		return err
	}
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctrl := newController()
	defer ctrl.Close()

	runner := tui.NewRunner(tui.NewSurveyDriver(cmd.OutOrStdout()), ctrl)
	if err := runner.Fill(context.Background()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), "\n"+ctrl.BuildPrompt())
	return err
}
