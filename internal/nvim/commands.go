package nvim

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"plugdoc/internal/ir"
)

//go:embed commands.schema.json
var commandsSchemaSource string

var (
	commandsSchemaOnce sync.Once
	commandsSchema     *jsonschema.Schema
	commandsSchemaErr  error
)

func loadCommandsSchema() (*jsonschema.Schema, error) {
	commandsSchemaOnce.Do(func() {
		commandsSchema, commandsSchemaErr = jsonschema.CompileString("commands.schema.json", commandsSchemaSource)
	})
	return commandsSchema, commandsSchemaErr
}

type rawCommand struct {
	Cmd        string  `json:"cmd"`
	Args       *string `json:"args"`
	Deprecated bool    `json:"deprecated"`
	Def        struct {
		Bang bool   `json:"bang"`
		Desc string `json:"desc"`
	} `json:"def"`
}

// FetchCommands evaluates expr, which must yield the plugin's command list,
// and decodes it. Deprecated commands are returned flagged, not filtered.
func FetchCommands(ctx context.Context, ev Evaluator, expr string) ([]ir.CommandDescriptor, error) {
	var raw json.RawMessage
	if err := ev.EvalJSON(ctx, expr, &raw); err != nil {
		return nil, err
	}
	return DecodeCommands(raw)
}

// DecodeCommands validates a JSON command list and converts it to descriptors.
// An empty object is how Lua encodes an empty table and decodes to no commands.
func DecodeCommands(data []byte) ([]ir.CommandDescriptor, error) {
	schema, err := loadCommandsSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile command schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, ok := doc.(map[string]any); ok {
		return []ir.CommandDescriptor{}, nil
	}

	var raws []rawCommand
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	cmds := make([]ir.CommandDescriptor, 0, len(raws))
	for _, r := range raws {
		c := ir.CommandDescriptor{
			Name:        r.Cmd,
			Description: r.Def.Desc,
			Bang:        r.Def.Bang,
			Deprecated:  r.Deprecated,
		}
		if r.Args != nil {
			c.Args = *r.Args
			c.HasArgs = true
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}
