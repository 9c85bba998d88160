package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"resultboard/internal/client/display"
)

// Client is a tracing HTTP client for the result board API. Every call
// prints its method, path and status to Out.
type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

// StatusError is returned for 4xx and 5xx responses
type StatusError struct {
	Status int
	Body   ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s)", e.Status, e.Body.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyData []byte
	if body != nil {
		var err error
		if bodyData, err = json.Marshal(body); err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if len(bodyData) > 0 {
		if c.Verbose {
			fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, indent(bodyData))
		} else {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Blue, bodyData, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Fprintf(c.Out, "%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
	if c.Verbose && len(respBody) > 0 {
		fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, indent(respBody))
	}

	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &statusErr.Body); err == nil {
			if !c.Verbose {
				fmt.Fprintf(c.Out, "%sError: %s%s\n", display.Red, statusErr.Body.Error, display.Reset)
				if statusErr.Body.Details != "" {
					fmt.Fprintf(c.Out, "%sDetails: %s%s\n", display.Red, statusErr.Body.Details, display.Reset)
				}
			}
		} else if !c.Verbose {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Red, respBody, display.Reset)
		}
		return statusErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Fprintf(c.Out, "%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			fmt.Fprintf(c.Out, "%sRaw response: %s%s\n", display.Green, respBody, display.Reset)
			return err
		}
	}
	return nil
}

func indent(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password, email string) (*AuthResponse, error) {
	req := &RegisterRequest{Username: username, Password: password, Email: email}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/register", req, &resp)
	return &resp, err
}

func (c *Client) Login(identifier, password string) (*AuthResponse, error) {
	req := &LoginRequest{Identifier: identifier, Password: password}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/login", req, &resp)
	return &resp, err
}

func (c *Client) Logout() error {
	return c.doRequest("POST", "/api/v1/auth/logout", nil, nil)
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest("GET", "/api/v1/auth/me", nil, &resp)
	return &resp, err
}

func (c *Client) ListGames() ([]Game, error) {
	var resp struct {
		Games []Game `json:"games"`
	}
	err := c.doRequest("GET", "/api/v1/games", nil, &resp)
	return resp.Games, err
}

func (c *Client) GetGame(code string) (*Game, error) {
	var resp struct {
		Game Game `json:"game"`
	}
	err := c.doRequest("GET", "/api/v1/games/"+url.PathEscape(code), nil, &resp)
	return &resp.Game, err
}

func (c *Client) CreateGame(req *CreateGameRequest) (*Game, error) {
	var resp struct {
		Game Game `json:"game"`
	}
	err := c.doRequest("POST", "/api/v1/games", req, &resp)
	return &resp.Game, err
}

func (c *Client) UpdateGame(code string, req *UpdateGameRequest) (*Game, error) {
	var resp struct {
		Game Game `json:"game"`
	}
	err := c.doRequest("PUT", "/api/v1/games/"+url.PathEscape(code), req, &resp)
	return &resp.Game, err
}

func (c *Client) DeleteGame(code string) error {
	return c.doRequest("DELETE", "/api/v1/games/"+url.PathEscape(code), nil, nil)
}

func (c *Client) BulkGames(items []BulkGameItem) (*BulkResponse, error) {
	var resp BulkResponse
	err := c.doRequest("POST", "/api/v1/games/bulk", items, &resp)
	return &resp, err
}

func (c *Client) RecordResult(req *ResultRequest) (*Result, error) {
	var resp Result
	err := c.doRequest("POST", "/api/v1/results/timewise", req, &resp)
	return &resp, err
}

func (c *Client) DeleteResult(id string) error {
	return c.doRequest("DELETE", "/api/v1/results/timewise/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Timewise(dateStr string) (*DayMatrix, error) {
	var resp DayMatrix
	q := url.Values{"dateStr": {dateStr}}
	err := c.doRequest("GET", "/api/v1/results/timewise?"+q.Encode(), nil, &resp)
	return &resp, err
}

func (c *Client) Snapshot(dateStr, timeText string) (*SnapshotView, error) {
	var resp SnapshotView
	q := url.Values{"dateStr": {dateStr}, "time": {timeText}}
	err := c.doRequest("GET", "/api/v1/results/snapshot?"+q.Encode(), nil, &resp)
	return &resp, err
}

func (c *Client) Monthly(year, month int, games []string) (*MonthlyChart, error) {
	var resp MonthlyChart
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}
	if len(games) > 0 {
		q.Set("games", strings.Join(games, ","))
	}
	err := c.doRequest("GET", "/api/v1/results/monthly?"+q.Encode(), nil, &resp)
	return &resp, err
}

// Home fetches the landing view; an empty dateStr lets the server pick today
func (c *Client) Home(dateStr string) (*HomeView, error) {
	var resp HomeView
	path := "/api/v1/results/home"
	if dateStr != "" {
		path += "?" + url.Values{"dateStr": {dateStr}}.Encode()
	}
	err := c.doRequest("GET", path, nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// Try as raw string
			bodyData = body
		}
	}
	return c.doRequest(method, path, bodyData, nil)
}
