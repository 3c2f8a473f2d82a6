package nvim

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentHost accepts connections and never answers a request.
func silentHost(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				io.Copy(io.Discard, conn)
			}()
		}
	}()
	return ln.Addr().String()
}

func TestClient_EvalJSON_CanceledDropsConnection(t *testing.T) {
	c := NewClient(Options{ListenAddress: silentHost(t)})
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out any
	err := c.EvalJSON(ctx, "1", &out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Nil(t, c.nvim)
}

func TestClient_DialFailureIsHostUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewClient(Options{ListenAddress: addr})
	var out any
	err = c.EvalJSON(context.Background(), "1", &out)
	assert.ErrorIs(t, err, ErrHostUnavailable)
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	assert.NoError(t, NewClient(Options{}).Close())
}
