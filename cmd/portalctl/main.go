// Package main provides a command-line client that watches a viewer's
// change stream and sends messages through the portal API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/messaging"
)

// Client talks to one portal server as one viewer.
type Client struct {
	baseURL    string
	viewerID   string
	httpClient *http.Client
	conn       *websocket.Conn
	done       chan struct{}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL, viewerID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		viewerID:   viewerID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		done:       make(chan struct{}),
	}
}

// Connect opens the viewer's change stream.
func (c *Client) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse addr: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/v1/viewers/" + url.PathEscape(c.viewerID) + "/stream"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.conn = conn
	return nil
}

// Close closes the stream.
func (c *Client) Close() error {
	close(c.done)
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) closing() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// ReadEvents prints change events until the stream closes.
func (c *Client) ReadEvents(log *logger.Logger) {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !c.closing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Warn("read error", logger.Fields{"error": err.Error()})
				}
				return
			}

			var ev domain.ChangeEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Warn("unmarshal error", logger.Fields{"error": err.Error()})
				continue
			}
			fmt.Printf("\n[%s] %s", ev.Type, formatEvent(ev))
			fmt.Print("\n> ")
		}
	}
}

func formatEvent(ev domain.ChangeEvent) string {
	parts := []string{}
	if ev.ConversationID != "" {
		parts = append(parts, "conversation="+ev.ConversationID)
	}
	if ev.MessageID != "" {
		parts = append(parts, "message="+ev.MessageID)
	}
	return strings.Join(parts, " ")
}

// List prints the viewer's conversations.
func (c *Client) List(query string) error {
	endpoint := fmt.Sprintf("%s/v1/viewers/%s/conversations?q=%s", c.baseURL, url.PathEscape(c.viewerID), url.QueryEscape(query))
	var resp struct {
		Conversations []domain.ConversationView `json:"conversations"`
	}
	if err := c.do(http.MethodGet, endpoint, nil, &resp); err != nil {
		return err
	}

	now := time.Now()
	for _, v := range resp.Conversations {
		last := ""
		if v.LastMessage != nil {
			last = v.LastMessage.Content
		}
		star := " "
		if v.IsStarred {
			star = "*"
		}
		fmt.Printf("%s %-12s %-18s %-9s (%d unread) %s\n", star, v.ID, v.OtherUser.DisplayName,
			messaging.FormatTimeAgo(now, v.LastMessageTime), v.UnreadCount, last)
	}
	return nil
}

// Open prints a conversation thread and marks it read.
func (c *Client) Open(convID string) error {
	endpoint := fmt.Sprintf("%s/v1/viewers/%s/conversations/%s/select", c.baseURL, url.PathEscape(c.viewerID), url.PathEscape(convID))
	var detail domain.ConversationDetail
	if err := c.do(http.MethodPost, endpoint, nil, &detail); err != nil {
		return err
	}

	fmt.Printf("-- %s (%s, %s)\n", detail.OtherUser.DisplayName, detail.OtherUser.RoleTitle, detail.OtherUser.Organization)
	for _, m := range detail.Messages {
		who := m.Sender.DisplayName
		if m.Sent {
			who = "you"
		}
		status := ""
		if m.Sent && m.IsRead {
			status = " (read)"
		}
		fmt.Printf("[%s] %s: %s%s\n", messaging.FormatClock(m.Timestamp.Local()), who, m.Content, status)
	}
	return nil
}

// Send posts content into convID.
func (c *Client) Send(convID, content string) error {
	endpoint := fmt.Sprintf("%s/v1/viewers/%s/conversations/%s/messages", c.baseURL, url.PathEscape(c.viewerID), url.PathEscape(convID))
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	var msg domain.Message
	return c.do(http.MethodPost, endpoint, body, &msg)
}

func (c *Client) do(method, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr map[string]string
		if json.Unmarshal(data, &apiErr) == nil && apiErr["error"] != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr["error"])
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Portal API address")
	viewerID := flag.String("viewer", messaging.DefaultViewerID, "Viewer to act as")
	flag.Parse()

	log := logger.New("info", "text")
	client := NewClient(*addr, *viewerID)

	fmt.Printf("Connecting to %s as %s...\n", *addr, *viewerID)
	if err := client.Connect(); err != nil {
		log.Fatal("failed to connect", logger.Fields{"error": err.Error()})
	}
	defer client.Close()

	fmt.Println("Connected.")
	fmt.Println("Commands: /list [query], /open <conv>, /send <conv> <text>, /quit")
	fmt.Println("After /open, plain lines are sent to the open conversation.")

	go client.ReadEvents(log)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)
	active := ""

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			var err error
			fields := strings.Fields(input)
			switch fields[0] {
			case "/quit":
				fmt.Println("Bye!")
				return
			case "/list":
				err = client.List(strings.TrimSpace(strings.TrimPrefix(input, "/list")))
			case "/open":
				if len(fields) < 2 {
					fmt.Println("usage: /open <conv>")
					continue
				}
				active = fields[1]
				err = client.Open(active)
			case "/send":
				if len(fields) < 3 {
					fmt.Println("usage: /send <conv> <text>")
					continue
				}
				err = client.Send(fields[1], strings.Join(fields[2:], " "))
			default:
				if active == "" {
					fmt.Println("open a conversation first")
					continue
				}
				err = client.Send(active, input)
			}
			if err != nil {
				log.Error("command failed", logger.Fields{"error": err.Error()})
			}
		}
	}
}
