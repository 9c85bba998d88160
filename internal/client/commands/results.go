package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"resultboard/internal/client/api"
	"resultboard/internal/client/display"
)

func (r *Registry) registerResultCommands() {
	r.Register(&Command{
		Name:        "record",
		ShortName:   "rec",
		Description: "Record a result, overwriting the slot (admin)",
		Usage:       "record <code> <date> <time...> <value>",
		Handler:     recordHandler,
	})
	r.Register(&Command{
		Name:        "delresult",
		Description: "Delete a result by id (admin)",
		Usage:       "delresult <id>",
		Handler:     deleteResultHandler,
	})
	r.Register(&Command{
		Name:        "day",
		ShortName:   "t",
		Description: "Show the time-wise matrix for a date",
		Usage:       "day [date]",
		Handler:     dayHandler,
	})
	r.Register(&Command{
		Name:        "snapshot",
		ShortName:   "s",
		Description: "Show each game's value as of a time",
		Usage:       "snapshot <date> <time...>",
		Handler:     snapshotHandler,
	})
	r.Register(&Command{
		Name:        "month",
		ShortName:   "mo",
		Description: "Show the monthly chart",
		Usage:       "month <year> <month> [codes,...]",
		Handler:     monthHandler,
	})
	r.Register(&Command{
		Name:        "home",
		ShortName:   "h",
		Description: "Show the home view",
		Usage:       "home [date]",
		Handler:     homeHandler,
	})
	r.addGroup("Result Commands", "record", "delresult", "day", "snapshot", "month", "home")
}

func recordHandler(s Session, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: record <code> <date> <time...> <value>")
	}

	req := &api.ResultRequest{
		GameCode: args[0],
		DateStr:  args[1],
		Time:     strings.Join(args[2:len(args)-1], " "),
		Value:    args[len(args)-1],
	}
	r, err := s.GetClient().RecordResult(req)
	if err != nil {
		return err
	}
	s.SetLastDate(r.DateStr)

	fmt.Printf("%sStored %s = %s at %s (id %s)%s\n",
		display.Green, strings.ToUpper(req.GameCode), r.Value, req.Time, r.ID, display.Reset)
	return nil
}

func deleteResultHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delresult <id>")
	}
	if err := s.GetClient().DeleteResult(args[0]); err != nil {
		return err
	}
	fmt.Printf("%sDeleted result %s%s\n", display.Green, args[0], display.Reset)
	return nil
}

// dateArg returns the explicit date or the last one used
func dateArg(s Session, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if d := s.GetLastDate(); d != "" {
		return d, nil
	}
	return "", fmt.Errorf("date required (YYYY-MM-DD)")
}

func dayHandler(s Session, args []string) error {
	date, err := dateArg(s, args)
	if err != nil {
		return err
	}
	m, err := s.GetClient().Timewise(date)
	if err != nil {
		return err
	}
	s.SetLastDate(date)
	display.Matrix(os.Stdout, *m)

	for _, item := range m.Items {
		if item.ID != nil {
			fmt.Printf("  %s %s %s\n", item.GameCode, item.Time, *item.ID)
		}
	}
	return nil
}

func snapshotHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: snapshot <date> <time...>")
	}
	snap, err := s.GetClient().Snapshot(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	s.SetLastDate(snap.DateStr)
	display.Values(os.Stdout, fmt.Sprintf("%s at %s", snap.DateStr, snap.Time), snap.Values)
	return nil
}

func monthHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: month <year> <month> [codes,...]")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid month %q", args[1])
	}
	var codes []string
	if len(args) > 2 {
		codes = strings.Split(args[2], ",")
	}

	chart, err := s.GetClient().Monthly(year, month, codes)
	if err != nil {
		return err
	}
	display.Monthly(os.Stdout, *chart)
	return nil
}

func homeHandler(s Session, args []string) error {
	date := ""
	if len(args) > 0 {
		date = args[0]
	}
	view, err := s.GetClient().Home(date)
	if err != nil {
		return err
	}

	fmt.Printf("%sHome for %s%s\n\n", display.Cyan, view.DateStr, display.Reset)
	display.Values(os.Stdout, "Yesterday (end of day)", view.Snapshot.Yesterday)
	display.Values(os.Stdout, "Today (latest)", view.Snapshot.Today)
	fmt.Println()
	display.Monthly(os.Stdout, view.Monthly)
	return nil
}
