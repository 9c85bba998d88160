// Package main implements an interactive client for the result board API
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"resultboard/internal/client/commands"
	"resultboard/internal/client/display"
	"resultboard/internal/client/session"

	"github.com/caarlos0/env/v11"
	"github.com/chzyer/readline"
)

type clientConfig struct {
	APIURL string `env:"RESULTBOARD_API_URL" envDefault:"http://localhost:8080"`
}

func main() {
	var cfg clientConfig
	if err := env.Parse(&cfg); err != nil {
		display.Println(display.Red, err.Error())
		os.Exit(1)
	}
	apiURL := flag.String("api", cfg.APIURL, "API base URL")
	flag.Parse()

	s := session.New(*apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("results"),
		HistoryFile:     ".resultboard_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		display.Println(display.Red, err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	display.Println(display.Cyan, "Result Board Client")
	display.Println(display.Cyan, "API: "+s.APIBaseURL)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		registry.Execute(line)
	}
	display.Println(display.Cyan, "Goodbye!")
}

func buildPrompt(s *session.Session) string {
	prompt := "results"
	if s.Username != "" {
		role := display.White + s.Role
		if s.Role == "admin" {
			role = display.Red + s.Role
		}
		prompt += fmt.Sprintf("%s [%s%s%s %s%s]", display.Yellow, display.Magenta, s.Username, display.Reset, role, display.Yellow)
	}
	if s.LastDate != "" {
		prompt += fmt.Sprintf(" %s%s", display.Cyan, s.LastDate)
	}
	return display.Prompt(prompt)
}

