package main

import (
	"fmt"
	"os"

	"guestbook/internal/client"
	"guestbook/internal/config"
	"guestbook/internal/logging"
	"guestbook/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFrontend()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log file:", err)
		os.Exit(1)
	}
	defer f.Close()
	log := logging.NewWithWriter(f, cfg.LogLevel, "json")
	log.Info().Str("api", cfg.APIURL).Msg("starting guestbook frontend")

	api := client.New(cfg.APIURL, nil)
	m := tui.New(api, log, cfg.Timeout.Duration())

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("tui")
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}
