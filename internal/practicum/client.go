// Package practicum is a client for the Practicum homework-status API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tooMike/homework-bot/internal/homework"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

var (
	// ErrRequestFailed matches transport failures: connection errors and timeouts.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnexpectedStatus matches any answer other than 200 OK.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// RequestFailedError wraps a transport failure (connection error, timeout).
type RequestFailedError struct {
	Endpoint string
	Err      error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("Ошибка запроса на эндпоинт %s: %v", e.Endpoint, e.Err)
}

func (e *RequestFailedError) Unwrap() []error { return []error{ErrRequestFailed, e.Err} }

// UnexpectedStatusError is returned for any non-200 answer.
type UnexpectedStatusError struct {
	Endpoint string
	Code     int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("Ошибка запроса на эндпоинт %s: код ответа %d", e.Endpoint, e.Code)
}

func (e *UnexpectedStatusError) Is(target error) bool { return target == ErrUnexpectedStatus }

// Config configures the client. Token is the Practicum OAuth token.
type Config struct {
	Endpoint string
	Token    string
	// Timeout bounds one request. 0 means 600s.
	Timeout time.Duration
}

// Client talks to the homework-status endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

// maxBody caps how much of an answer is read.
const maxBody = 8 << 20

// New builds a client. A zero timeout means 600s.
func New(cfg Config, log logx.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 600 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// WithHTTPClient replaces the underlying client (tests, proxies).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// HomeworkStatuses asks for homework updates since fromDate (unix seconds).
//
// The decoded JSON body is returned as-is; its shape is checked by homework.Validate.
// There is no retry here: the poll loop simply asks again on the next tick.
func (c *Client) HomeworkStatuses(ctx context.Context, fromDate int64) (any, error) {
	c.log.Debug("sending api request", logx.Int64("from_date", fromDate))

	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: c.cfg.Endpoint, Err: err}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: c.cfg.Endpoint, Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+strings.TrimSpace(c.cfg.Token))
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: c.cfg.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &UnexpectedStatusError{Endpoint: c.cfg.Endpoint, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RequestFailedError{Endpoint: c.cfg.Endpoint, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: response is not JSON: %v", homework.ErrMalformedResponse, err)
	}
	c.log.Debug("api answer received", logx.Int("bytes", len(body)))
	return out, nil
}
