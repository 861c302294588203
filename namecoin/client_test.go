package namecoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	_ = host

	return NewClient("127.0.0.1", uint16(port), "", "", time.Second)
}

func TestClientLookupSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "bitcoin-json-rpc/0.3.50", r.Header.Get("User-Agent"))

		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "name_show", req.Method)
		assert.Equal(t, []interface{}{"d/example"}, req.Params)

		fmt.Fprint(w, `{"result":{"value":"{'ns':['ns1.example.bit']}"},"error":null,"id":1}`)
	})

	value, found, err := c.Lookup(context.Background(), "d/example")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "{'ns':['ns1.example.bit']}", value)
}

func TestClientLookupNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null,"error":{"message":"name not found","code":-4},"id":1}`)
	})

	_, found, err := c.Lookup(context.Background(), "d/missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientLookupOtherRPCError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null,"error":{"message":"internal error","code":-1},"id":1}`)
	})

	_, _, err := c.Lookup(context.Background(), "d/example")
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -1, rpcErr.Code)
}

func TestClientBasicAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "secret", pass)
		fmt.Fprint(w, `{"result":{"value":"{}"},"error":null,"id":1}`)
	})
	c.User = "alice"
	c.Password = "secret"

	_, _, err := c.Lookup(context.Background(), "d/example")
	require.NoError(t, err)
}
