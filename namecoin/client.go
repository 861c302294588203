// Package namecoin implements the external Namecoin node JSON-RPC
// shim: a single operation, Lookup, exposing the `d/<label>`
// namespace's stored value. Everything about the wire protocol
// (JSON-RPC 1.0 over HTTP, header set, -4 "name not found" sentinel)
// is grounded on original_source/bcresolver/namecoin.py; the HTTP
// client shape (fixed timeout, typed error, retry on transient network
// failure) is grounded on blocky's resolver/upstream_resolver.go
// httpUpstreamClient.
package namecoin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	userAgent   = "bitcoin-json-rpc/0.3.50"
	rpcErrNoSuchName = -4
)

// RPCError is raised for any JSON-RPC error other than "name not
// found" (-4), which Lookup instead reports via ErrNotFound.
type RPCError struct {
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("namecoin rpc error [code: %d | message: %s]", e.Code, e.Message)
}

// ErrNotFound is returned by Lookup when the RPC error code is -4.
var ErrNotFound = fmt.Errorf("namecoin name not found")

// Client is a Namecoin node JSON-RPC 1.0 client.
type Client struct {
	Host     string
	Port     uint16
	User     string
	Password string
	Timeout  time.Duration

	httpClient *http.Client
}

// NewClient builds a Client with the given endpoint and timeout. A
// zero timeout defaults to the source's 60-second default.
func NewClient(host string, port uint16, user, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// send issues one JSON-RPC 1.0 call and returns the raw "result" field.
func (c *Client) send(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	reqBody, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, fmt.Errorf("can't marshal namecoin rpc request: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/", c.Host, c.Port)

	var respBody []byte

	err = retry.Do(
		func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
			if err != nil {
				return retry.Unrecoverable(err)
			}

			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Accept", "application/json")
			httpReq.Header.Set("User-Agent", userAgent)

			if c.User != "" && c.Password != "" {
				httpReq.SetBasicAuth(c.User, c.Password)
			}

			httpResp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer httpResp.Body.Close()

			body, err := io.ReadAll(httpResp.Body)
			if err != nil {
				return err
			}

			respBody = body

			return nil
		},
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to namecoin node: %w", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unable to parse namecoin rpc response: %w", err)
	}

	if resp.Error != nil {
		if resp.Error.Code == rpcErrNoSuchName {
			return nil, ErrNotFound
		}

		return nil, &RPCError{Message: resp.Error.Message, Code: resp.Error.Code}
	}

	return resp.Result, nil
}

// domainResult mirrors the name_show RPC response shape.
type domainResult struct {
	Value string `json:"value"`
}

// Lookup fetches the Namecoin value stored at fullName (e.g.
// "d/example"). It returns (value, true, nil) on success,
// ("", false, nil) when the node reports "name not found" (-4), and a
// non-nil error for any other failure.
func (c *Client) Lookup(ctx context.Context, fullName string) (value string, found bool, err error) {
	raw, err := c.send(ctx, "name_show", fullName)
	if err != nil {
		if err == ErrNotFound {
			return "", false, nil
		}

		return "", false, err
	}

	var result domainResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", false, fmt.Errorf("unable to parse namecoin domain result: %w", err)
	}

	return result.Value, true, nil
}
