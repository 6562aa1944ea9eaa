// Package mail reads flagged messages from a Microsoft Graph style mail API.
package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"
	flaggedLimit   = 20
	maxErrorBody   = 4 << 10
)

var ErrUnauthorized = errors.New("mail token rejected")

// APIError is returned for any non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mail api: status %d: %s", e.Status, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message is a flattened mail message.
type Message struct {
	ID      string
	Subject string
	Preview string
	From    string
	Flagged bool
}

type wireMessage struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"bodyPreview"`
	From        struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	Flag struct {
		FlagStatus string `json:"flagStatus"`
	} `json:"flag"`
}

func (w wireMessage) message() Message {
	from := w.From.EmailAddress.Address
	if from == "" {
		from = w.From.EmailAddress.Name
	}
	return Message{
		ID:      w.ID,
		Subject: w.Subject,
		Preview: w.BodyPreview,
		From:    from,
		Flagged: w.Flag.FlagStatus == "flagged",
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) FlaggedMessages(ctx context.Context, token string) ([]Message, error) {
	q := url.Values{}
	q.Set("$filter", "flag/flagStatus eq 'flagged'")
	q.Set("$select", "id,subject,bodyPreview,from,flag")
	q.Set("$top", fmt.Sprint(flaggedLimit))

	var page struct {
		Value []wireMessage `json:"value"`
	}
	if err := c.get(ctx, token, "/me/messages?"+q.Encode(), &page); err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(page.Value))
	for _, m := range page.Value {
		out = append(out, m.message())
	}
	return out, nil
}

func (c *Client) Message(ctx context.Context, token, id string) (Message, error) {
	var m wireMessage
	if err := c.get(ctx, token, "/me/messages/"+url.PathEscape(id), &m); err != nil {
		return Message{}, err
	}
	return m.message(), nil
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mail api: decode: %w", err)
	}
	return nil
}
