package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resultboard/internal/client/display"
)

func (r *Registry) registerUtilityCommands() {
	r.Register(&Command{
		Name:        "status",
		ShortName:   ".",
		Description: "Show server health, catalog size and session",
		Usage:       "status",
		Handler:     statusHandler,
	})
	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or switch the API server",
		Usage:       "url [host:port | http(s)://host:port]",
		Handler:     urlHandler,
	})
	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send an arbitrary API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})
	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
	r.addGroup("Utility Commands", "status", "url", "raw", "clear")
}

// statusHandler reports on the server and the catalog it serves. A failing
// catalog call is shown inline so an unhealthy store still prints health.
func statusHandler(s Session, args []string) error {
	client := s.GetClient()
	health, err := client.Health()
	if err != nil {
		return err
	}
	out := client.Out

	color := display.Green
	if health.Storage != "" && health.Storage != "ok" {
		color = display.Yellow
	}
	fmt.Fprintf(out, "%sServer %s%s (%s)\n", color, health.Status, display.Reset, s.GetAPIBaseURL())
	fmt.Fprintf(out, "  clock:   %s\n", time.Unix(health.Time, 0).UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(out, "  storage: %s\n", storageLabel(health.Storage))

	if games, err := client.ListGames(); err != nil {
		fmt.Fprintf(out, "  games:   %sunavailable%s\n", display.Red, display.Reset)
	} else {
		active := 0
		for _, g := range games {
			if g.Active {
				active++
			}
		}
		fmt.Fprintf(out, "  games:   %d (%d active)\n", len(games), active)
	}

	printSession(out, s)
	return nil
}

func storageLabel(state string) string {
	if state == "" {
		return "unknown"
	}
	return state
}

func printSession(out io.Writer, s Session) {
	if s.GetAuthToken() == "" {
		fmt.Fprintln(out, "  session: anonymous (read-only)")
	} else {
		fmt.Fprintf(out, "  session: %s as %s\n", s.GetUsername(), s.GetRole())
	}
	if d := s.GetLastDate(); d != "" {
		fmt.Fprintf(out, "  date:    %s\n", d)
	}
}

// urlHandler switches servers and checks the new one right away; the
// switch stands even when the check fails
func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.GetClient().Out, "API URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	target := args[0]
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}
	s.SetAPIBaseURL(target)

	health, err := s.GetClient().Health()
	if err != nil {
		display.Println(display.Yellow, "API URL set to "+target+" (server not reachable)")
		return nil
	}
	display.Println(display.Cyan, fmt.Sprintf("API URL set to %s (%s, storage %s)", target, health.Status, storageLabel(health.Storage)))
	return nil
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: raw <method> <path> [json-body]")
	}
	path := args[1]
	if !strings.HasPrefix(path, "/") {
		path = "/api/v1/" + path
	}
	return s.GetClient().RawRequest(strings.ToUpper(args[0]), path, strings.Join(args[2:], " "))
}

func clearHandler(s Session, args []string) error {
	fmt.Fprint(s.GetClient().Out, "\033[H\033[2J")
	return nil
}
