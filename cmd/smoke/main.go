// Command smoke walks a running server through register, login, profile,
// chat creation and a message exchange, printing each step.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

type client struct {
	baseURL string
	http    *http.Client
}

// Request helper
func (c *client) send(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(c *client, title, method, path, token string, body interface{}, want int) []byte {
	color.Yellow("\n%s", title)
	resp, raw, err := c.send(method, path, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != want {
		color.Red("Status: %s (want %d)", resp.Status, want)
		prettyPrint(raw)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(raw)
	return raw
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	email := flag.String("email", fmt.Sprintf("smoke+%d@example.com", time.Now().Unix()), "account to register")
	pass := flag.String("password", "Passw0rd!", "account password")
	flag.Parse()

	// Replies take 10-20s with the simulated provider.
	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 60 * time.Second}}
	creds := map[string]string{"email": *email, "password": *pass}

	color.Cyan("Starting chat API smoke test against %s\n", *baseURL)

	step(c, "1. Health", http.MethodGet, "/health", "", nil, http.StatusOK)
	step(c, "2. Register", http.MethodPost, "/auth/register", "", creds, http.StatusCreated)
	step(c, "3. Register again (expect conflict)", http.MethodPost, "/auth/register", "", creds, http.StatusConflict)

	var login struct {
		Token string `json:"token"`
	}
	raw := step(c, "4. Login", http.MethodPost, "/auth/login", "", creds, http.StatusOK)
	if err := json.Unmarshal(raw, &login); err != nil || login.Token == "" {
		color.Red("Login response has no token")
		os.Exit(1)
	}

	step(c, "5. Profile", http.MethodGet, "/auth/me", login.Token, nil, http.StatusOK)

	var created struct {
		Chat struct {
			Id string `json:"id"`
		} `json:"chat"`
	}
	raw = step(c, "6. Create chat", http.MethodPost, "/chats", login.Token, map[string]string{"title": "Smoke"}, http.StatusCreated)
	if err := json.Unmarshal(raw, &created); err != nil || created.Chat.Id == "" {
		color.Red("Create chat response has no chat id")
		os.Exit(1)
	}

	path := "/chats/" + created.Chat.Id + "/messages"
	step(c, "7. Post message (waits for reply)", http.MethodPost, path, login.Token, map[string]string{"content": "Hello"}, http.StatusOK)
	step(c, "8. Transcript", http.MethodGet, path, login.Token, nil, http.StatusOK)
	step(c, "9. List chats", http.MethodGet, "/chats", login.Token, nil, http.StatusOK)

	color.Cyan("\nAll steps passed")
}
