// Package session holds the REPL client's connection and login state
package session

import "resultboard/internal/client/api"

// Session is the mutable state shared by client commands
type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool

	AuthToken string
	UserID    string
	Username  string
	Role      string

	// LastDate is the date used by view commands when none is given
	LastDate string
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
	}
}

func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool        { return s.Verbose }

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetAuthToken() string { return s.AuthToken }

// SetAuth stores the login identity and token; an empty token logs out
func (s *Session) SetAuth(token, userID, username, role string) {
	s.AuthToken = token
	s.UserID = userID
	s.Username = username
	s.Role = role
	s.Client.SetToken(token)
}

func (s *Session) GetUsername() string { return s.Username }
func (s *Session) GetRole() string     { return s.Role }

func (s *Session) GetLastDate() string     { return s.LastDate }
func (s *Session) SetLastDate(date string) { s.LastDate = date }
