package nvim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/neovim/go-client/nvim"
)

var (
	// ErrHostUnavailable means no Neovim instance could be reached or started.
	ErrHostUnavailable = errors.New("neovim host unavailable")
	// ErrMalformedResponse means the host answered with data of the wrong shape.
	ErrMalformedResponse = errors.New("malformed response from neovim")
)

// Evaluator runs a Lua expression and decodes its JSON-encoded value into out.
type Evaluator interface {
	EvalJSON(ctx context.Context, expr string, out any) error
}

// Options configures how Client reaches Neovim.
type Options struct {
	// Binary is the nvim executable used when no ListenAddress is given.
	Binary string
	// ListenAddress is the socket or host:port of a running instance.
	ListenAddress string
	// Root is prepended to 'runtimepath' of a spawned instance so that
	// require() finds the plugin under development.
	Root string
}

// Client is a lazily connected Evaluator. The connection is opened on the first
// EvalJSON and released by Close.
type Client struct {
	opts Options

	mu   sync.Mutex
	nvim *nvim.Nvim
}

func NewClient(opts Options) *Client {
	if opts.Binary == "" {
		opts.Binary = "nvim"
	}
	return &Client{opts: opts}
}

func (c *Client) connect(ctx context.Context) (*nvim.Nvim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nvim != nil {
		return c.nvim, nil
	}

	var (
		v   *nvim.Nvim
		err error
	)
	if c.opts.ListenAddress != "" {
		v, err = nvim.Dial(c.opts.ListenAddress, nvim.DialContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to dial %s: %v", ErrHostUnavailable, c.opts.ListenAddress, err)
		}
	} else {
		args := []string{"--embed", "--headless", "--clean"}
		if c.opts.Root != "" {
			args = append(args, "--cmd", fmt.Sprintf("lua vim.opt.rtp:prepend(%q)", c.opts.Root))
		}
		v, err = nvim.NewChildProcess(
			nvim.ChildProcessCommand(c.opts.Binary),
			nvim.ChildProcessArgs(args...),
			nvim.ChildProcessDir(c.opts.Root),
			nvim.ChildProcessContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to start %s: %v", ErrHostUnavailable, c.opts.Binary, err)
		}
	}
	c.nvim = v
	return v, nil
}

// EvalJSON evaluates expr in Neovim as vim.json.encode(expr) and unmarshals
// the result into out.
func (c *Client) EvalJSON(ctx context.Context, expr string, out any) error {
	v, err := c.connect(ctx)
	if err != nil {
		return err
	}

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		var raw string
		err := v.ExecLua("return vim.json.encode("+expr+")", &raw)
		done <- result{raw: raw, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		// ExecLua has no context; dropping the connection releases it.
		c.Close()
		return ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return fmt.Errorf("failed to evaluate %s: %w", expr, r.err)
	}
	if err := json.Unmarshal([]byte(r.raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Close shuts down the connection, and the child process if one was spawned.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nvim == nil {
		return nil
	}
	err := c.nvim.Close()
	c.nvim = nil
	return err
}
