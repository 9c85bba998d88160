package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"resultboard/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "r",
		Description: "Register a new user (the first user becomes admin)",
		Usage:       "register [username]",
		Handler:     registerHandler,
	})
	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with credentials",
		Usage:       "login [username|email]",
		Handler:     loginHandler,
	})
	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Description: "End the session on the server",
		Usage:       "logout",
		Handler:     logoutHandler,
	})
	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
	r.addGroup("Auth Commands", "register", "login", "logout", "whoami")
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// argOrPrompt returns args[0] or reads a line from stdin
func argOrPrompt(args []string, prompt string) string {
	if len(args) > 0 {
		return args[0]
	}
	fmt.Print(display.Yellow + prompt + display.Reset)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

func registerHandler(s Session, args []string) error {
	username := argOrPrompt(args, "Username: ")
	password, err := readPassword(display.Yellow + "Password: " + display.Reset)
	if err != nil {
		return err
	}
	email := argOrPrompt(nil, "Email (optional): ")

	resp, err := s.GetClient().Register(username, password, email)
	if err != nil {
		return err
	}
	s.SetAuth(resp.Token, resp.UserID, resp.Username, resp.Role)

	fmt.Printf("%sRegistered successfully%s\n", display.Green, display.Reset)
	fmt.Printf("User ID:  %s\n", resp.UserID)
	fmt.Printf("Username: %s\n", resp.Username)
	fmt.Printf("Role:     %s\n", resp.Role)
	return nil
}

func loginHandler(s Session, args []string) error {
	identifier := argOrPrompt(args, "Username or Email: ")
	password, err := readPassword(display.Yellow + "Password: " + display.Reset)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Login(identifier, password)
	if err != nil {
		return err
	}
	s.SetAuth(resp.Token, resp.UserID, resp.Username, resp.Role)

	fmt.Printf("%sLogged in as %s (%s)%s\n", display.Green, resp.Username, resp.Role, display.Reset)
	return nil
}

func logoutHandler(s Session, args []string) error {
	if s.GetAuthToken() != "" {
		if err := s.GetClient().Logout(); err != nil {
			// Token may already be expired; drop it locally anyway
			fmt.Printf("%sServer logout failed: %s%s\n", display.Yellow, err, display.Reset)
		}
	}
	s.SetAuth("", "", "", "")
	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.GetClient().GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  User ID:  %s\n", user.UserID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Role:     %s\n", user.Role)
	if user.Email != "" {
		fmt.Printf("  Email:    %s\n", user.Email)
	}
	fmt.Printf("  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
