// Package main runs the mock interview in the terminal against the
// configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/config"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
)

func main() {
	sessionID := flag.String("session", "terminal", "Session to store config and progress under")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var bank interview.QuestionBank = interview.EmbeddedBank{}
	if cfg.QuestionBankURL != "" {
		bank = interview.NewHTTPBank(cfg.QuestionBankURL, cfg.QuestionBankTimeout)
	}

	// logging to stdout would tear the UI
	ctl := interview.NewController(db, interview.Options{
		Bank:      bank,
		TimeLimit: cfg.QuestionTimeLimit,
		Logger:    logger.Discard(),
	})
	defer ctl.Close()

	p := tea.NewProgram(InitialInterviewModel(ctx, ctl, *sessionID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "interview failed: %v\n", err)
		os.Exit(1)
	}
}
