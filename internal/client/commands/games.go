package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resultboard/internal/client/api"
	"resultboard/internal/client/display"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "games",
		ShortName:   "g",
		Description: "List the game catalog",
		Usage:       "games",
		Handler:     listGamesHandler,
	})
	r.Register(&Command{
		Name:        "game",
		Description: "Show one game",
		Usage:       "game <code>",
		Handler:     getGameHandler,
	})
	r.Register(&Command{
		Name:        "addgame",
		ShortName:   "a",
		Description: "Create a game (admin)",
		Usage:       "addgame <code> <name...> [time=3:40PM] [rank=N] [active=false]",
		Handler:     addGameHandler,
	})
	r.Register(&Command{
		Name:        "setgame",
		Description: "Update game fields (admin)",
		Usage:       "setgame <code> [name=...] [code=...] [time=...] [rank=N] [active=true|false]",
		Handler:     setGameHandler,
	})
	r.Register(&Command{
		Name:        "delgame",
		Description: "Delete a game, keeping its results (admin)",
		Usage:       "delgame <code>",
		Handler:     deleteGameHandler,
	})
	r.Register(&Command{
		Name:        "bulk",
		Description: "Bulk upsert games from a JSON array file (admin)",
		Usage:       "bulk <file.json>",
		Handler:     bulkGamesHandler,
	})
	r.addGroup("Game Commands", "games", "game", "addgame", "setgame", "delgame", "bulk")
}

// splitFields separates key=value arguments from plain words
func splitFields(args []string) (words []string, fields map[string]string) {
	fields = make(map[string]string)
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			fields[strings.ToLower(k)] = v
			continue
		}
		words = append(words, a)
	}
	return words, fields
}

func listGamesHandler(s Session, args []string) error {
	games, err := s.GetClient().ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No games")
		return nil
	}
	display.Games(os.Stdout, games)
	return nil
}

func getGameHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: game <code>")
	}
	g, err := s.GetClient().GetGame(args[0])
	if err != nil {
		return err
	}
	display.Games(os.Stdout, []api.Game{*g})
	return nil
}

func addGameHandler(s Session, args []string) error {
	words, fields := splitFields(args)
	if len(words) < 2 {
		return fmt.Errorf("usage: addgame <code> <name...> [time=...] [rank=N] [active=false]")
	}

	req := &api.CreateGameRequest{
		Code:        words[0],
		Name:        strings.Join(words[1:], " "),
		DefaultTime: fields["time"],
	}
	if v, ok := fields["rank"]; ok {
		rank, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid rank %q", v)
		}
		req.OrderIndex = rank
	}
	if v, ok := fields["active"]; ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid active %q", v)
		}
		req.IsActive = &active
	}

	g, err := s.GetClient().CreateGame(req)
	if err != nil {
		return err
	}
	fmt.Printf("%sCreated %s at rank %d%s\n", display.Green, g.Code, g.OrderIndex, display.Reset)
	return nil
}

func setGameHandler(s Session, args []string) error {
	words, fields := splitFields(args)
	if len(words) != 1 || len(fields) == 0 {
		return fmt.Errorf("usage: setgame <code> [name=...] [code=...] [time=...] [rank=N] [active=true|false]")
	}

	var req api.UpdateGameRequest
	for k, v := range fields {
		switch k {
		case "name":
			req.Name = &v
		case "code":
			req.NewCode = &v
		case "time":
			req.DefaultTime = &v
		case "rank":
			rank, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid rank %q", v)
			}
			req.OrderIndex = &rank
		case "active":
			active, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid active %q", v)
			}
			req.IsActive = &active
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}

	g, err := s.GetClient().UpdateGame(words[0], &req)
	if err != nil {
		return err
	}
	display.Games(os.Stdout, []api.Game{*g})
	return nil
}

func deleteGameHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delgame <code>")
	}
	if err := s.GetClient().DeleteGame(args[0]); err != nil {
		return err
	}
	fmt.Printf("%sDeleted %s%s\n", display.Green, strings.ToUpper(args[0]), display.Reset)
	return nil
}

func bulkGamesHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bulk <file.json>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var items []api.BulkGameItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	resp, err := s.GetClient().BulkGames(items)
	if err != nil {
		return err
	}
	for _, o := range resp.Results {
		fmt.Printf("  %-8s %s\n", o.Code, o.Action)
	}
	if skipped := len(items) - len(resp.Results); skipped > 0 {
		fmt.Printf("%s%d item(s) skipped%s\n", display.Yellow, skipped, display.Reset)
	}
	return nil
}
