// Package obs is a minimal obs-websocket (protocol v5) client covering what
// the overlay needs: text source updates and scene/input listing. Connection
// failure at startup degrades the overlay to no-ops instead of aborting the
// process.
package obs

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	opHello      = 0
	opIdentify   = 1
	opIdentified = 2
	opRequest    = 6
	opResponse   = 7

	rpcVersion = 1
)

// message is the obs-websocket envelope.
type message struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type helloData struct {
	Authentication *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type requestData struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type responseData struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

// Input is one OBS input source.
type Input struct {
	Name string `json:"inputName"`
	Kind string `json:"inputKind"`
}

// Client is a connected obs-websocket session. Requests are serialized; the
// single lock makes it safe to share between the orchestrator and the status
// endpoint.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Connect dials the obs-websocket server and completes the Hello/Identify
// handshake, answering the sha256 challenge when a password is set.
func Connect(ctx context.Context, host string, port int, password string) (*Client, error) {
	dialer := websocket.Dialer{
		Subprotocols:     []string{"obswebsocket.json"},
		HandshakeTimeout: 5 * time.Second,
	}
	u := fmt.Sprintf("ws://%s:%d", host, port)
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("obs: dial %s: %w", u, err)
	}

	c := &Client{conn: conn}
	if err := c.identify(password); err != nil {
		_ = conn.Close()
		return nil, err
	}
	slog.Info("obs: connected", slog.String("addr", u))
	return c, nil
}

func (c *Client) identify(password string) error {
	var env message
	if err := c.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("obs: read hello: %w", err)
	}
	if env.Op != opHello {
		return fmt.Errorf("obs: expected hello, got op %d", env.Op)
	}
	var hello helloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		return fmt.Errorf("obs: parse hello: %w", err)
	}

	identify := map[string]any{"rpcVersion": rpcVersion}
	if hello.Authentication != nil {
		if password == "" {
			return fmt.Errorf("obs: server requires authentication but no password configured")
		}
		identify["authentication"] = authResponse(password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	if err := c.writeOp(opIdentify, identify); err != nil {
		return fmt.Errorf("obs: send identify: %w", err)
	}

	if err := c.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("obs: read identified: %w", err)
	}
	if env.Op != opIdentified {
		return fmt.Errorf("obs: identify rejected (op %d)", env.Op)
	}
	return nil
}

// authResponse computes base64(sha256(base64(sha256(password+salt)) + challenge)).
func authResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	b64Secret := base64.StdEncoding.EncodeToString(secret[:])
	auth := sha256.Sum256([]byte(b64Secret + challenge))
	return base64.StdEncoding.EncodeToString(auth[:])
}

func (c *Client) writeOp(op int, d any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(message{Op: op, D: raw})
}

// roundTrip issues one request and waits for its matching response, skipping
// interleaved event messages.
func (c *Client) roundTrip(ctx context.Context, reqType string, reqData any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("obs: %s: connection closed", reqType)
	}

	deadline := time.Now().Add(5 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetReadDeadline(deadline)
	_ = c.conn.SetWriteDeadline(deadline)

	reqID := uuid.New().String()
	if err := c.writeOp(opRequest, requestData{RequestType: reqType, RequestID: reqID, RequestData: reqData}); err != nil {
		return fmt.Errorf("obs: send %s: %w", reqType, err)
	}

	for {
		var env message
		if err := c.conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("obs: read %s response: %w", reqType, err)
		}
		if env.Op != opResponse {
			continue // events and other traffic
		}
		var resp responseData
		if err := json.Unmarshal(env.D, &resp); err != nil {
			return fmt.Errorf("obs: parse %s response: %w", reqType, err)
		}
		if resp.RequestID != reqID {
			continue
		}
		if !resp.RequestStatus.Result {
			return fmt.Errorf("obs: %s failed: code %d %s", reqType, resp.RequestStatus.Code, resp.RequestStatus.Comment)
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return fmt.Errorf("obs: decode %s response: %w", reqType, err)
			}
		}
		return nil
	}
}

// SetText writes text into a text input source, keeping its other settings.
func (c *Client) SetText(ctx context.Context, inputName, text string) error {
	return c.roundTrip(ctx, "SetInputSettings", map[string]any{
		"inputName":     inputName,
		"inputSettings": map[string]any{"text": text},
		"overlay":       true,
	}, nil)
}

// Scenes lists the scene names of the current collection.
func (c *Client) Scenes(ctx context.Context) ([]string, error) {
	var out struct {
		Scenes []struct {
			SceneName string `json:"sceneName"`
		} `json:"scenes"`
	}
	if err := c.roundTrip(ctx, "GetSceneList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, len(out.Scenes))
	for i, s := range out.Scenes {
		names[i] = s.SceneName
	}
	return names, nil
}

// Inputs lists the input sources with their kinds.
func (c *Client) Inputs(ctx context.Context) ([]Input, error) {
	var out struct {
		Inputs []Input `json:"inputs"`
	}
	if err := c.roundTrip(ctx, "GetInputList", nil, &out); err != nil {
		return nil, err
	}
	return out.Inputs, nil
}

// Close tears down the websocket connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
