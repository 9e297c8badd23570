package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseChatSuite drives a deployed node over its public HTTP and
// websocket surfaces. It holds no in-process handles on purpose.
type BaseChatSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("CHAT_SERVER_ADDR not set, skipping e2e suite")
	}
	s.client = &http.Client{Timeout: 5 * time.Second}
}

// Step prints a colorized header so scenario phases stand out in logs.
func (s *BaseChatSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// PostJSON sends a JSON body and decodes the JSON response.
func (s *BaseChatSuite) PostJSON(path string, body any) (int, map[string]string) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := s.client.Post(s.Config.ServerAddr+path, "application/json",
		bytes.NewReader(payload))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// Dial opens an authenticated websocket session against the node.
func (s *BaseChatSuite) Dial(token string) *websocket.Conn {
	wsAddr := strings.Replace(s.Config.ServerAddr, "http", "ws", 1)
	conn, resp, err := websocket.DefaultDialer.Dial(
		fmt.Sprintf("%s/ws?token=%s", wsAddr, token), nil)
	s.Require().NoError(err)
	_ = resp.Body.Close()
	return conn
}
