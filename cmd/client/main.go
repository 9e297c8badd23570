package main

import (
	"bufio"
	"bytes"
	"chat-live/domain"
	"chat-live/infrastructure/ws"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddr string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	Username   string `env:"CHAT_USERNAME,required=true"`
	Password   string `env:"CHAT_PASSWORD,required=true"`
	Register   bool   `env:"CHAT_REGISTER,default=false"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Obtain a token: register or login against the HTTP API.
	token, err := authenticate(config)
	if err != nil {
		return exitRuntime, err
	}

	// 4. Establish the websocket session.
	wsURL := url.URL{Scheme: "ws", Host: config.ServerAddr, Path: "/ws",
		RawQuery: "token=" + url.QueryEscape(token)}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return exitRuntime, fmt.Errorf("handshake rejected: authentication error")
		}
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerAddr, err)
	}
	defer conn.Close()

	color.Green.Println("Connected. Type a message, /who for the roster, /quit to leave.")

	// 5. Render incoming events until the connection drops.
	go func() {
		defer stop()
		for {
			var outbound ws.Outbound
			if err := conn.ReadJSON(&outbound); err != nil {
				log.Debug("Connection closed", "error", err)
				return
			}
			render(outbound.Payload, config.Username)
		}
	}()

	// 6. Forward stdin lines as send_message events.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			switch {
			case line == "/quit":
				stop()
			case line == "/who":
				if err := printRoster(config.ServerAddr); err != nil {
					color.Red.Println("roster unavailable:", err)
				}
			default:
				envelope := ws.Inbound{Event: ws.EventSendMessage, Payload: line}
				if err := conn.WriteJSON(envelope); err != nil {
					return exitRuntime, fmt.Errorf("send failed: %w", err)
				}
			}
		}
	}
}

// authenticate registers or logs in and returns the session token.
func authenticate(config Config) (string, error) {
	path := "/auth/login"
	if config.Register {
		path = "/auth/register"
	}

	body, _ := json.Marshal(map[string]string{
		"username": config.Username,
		"password": config.Password,
	})

	resp, err := http.Post("http://"+config.ServerAddr+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("auth response malformed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth rejected: %s", payload.Message)
	}
	return payload.Token, nil
}

// render prints one chat event, system notices in yellow, own messages
// dimmed, everyone else in cyan.
func render(e domain.ChatEvent, ownUsername string) {
	stamp := e.Timestamp.Local().Format("15:04:05")
	switch {
	case e.Kind == domain.KindSystem:
		color.Yellow.Printf("[%s] * %s\n", stamp, e.Message)
	case e.Username == ownUsername:
		color.Gray.Printf("[%s] %s: %s\n", stamp, e.Username, e.Message)
	default:
		color.Cyan.Printf("[%s] %s: ", stamp, e.Username)
		fmt.Println(e.Message)
	}
}

// printRoster fetches /presence and renders the online users as a table.
func printRoster(serverAddr string) error {
	resp, err := http.Get("http://" + serverAddr + "/presence")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var payload struct {
		Users []struct {
			Username    string `json:"username"`
			ConnectedAt string `json:"connected_at"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Connected at"})
	for _, user := range payload.Users {
		table.Append([]string{user.Username, user.ConnectedAt})
	}
	table.Render()
	return nil
}
