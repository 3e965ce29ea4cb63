package connector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Envelope types written to stdout during a subprocess session.
const (
	envelopeOutput = "output"
	envelopeState  = "state"
	envelopeDone   = "done"
	envelopeError  = "error"
)

// commandEnvelope is one command read from stdin: a single JSON object per
// line.
type commandEnvelope struct {
	Type  string `json:"type"`
	Input *Input `json:"input,omitempty"`
}

// outputEnvelope is one message written to stdout in response.
type outputEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// maxCommandLine bounds a single stdin command line. Persisted state and
// change lists are small; anything past this is a host bug.
const maxCommandLine = 16 * 1024 * 1024

// RunSubprocess drives the connector from standard streams: one JSON
// command envelope per stdin line, responses as JSON envelopes on stdout.
//
// Each command produces zero or more "output" envelopes (streamed as the
// handler emits them), a "state" envelope when the handler saved counter
// state, and finally either "done" or "error". A failed command does not
// end the session; the loop continues with the next line.
//
//	echo '{"type":"std:account:list","input":{}}' | ./connector
func RunSubprocess(ctx context.Context, c *Connector) error {
	return runSubprocess(ctx, c, os.Stdin, os.Stdout)
}

func runSubprocess(ctx context.Context, c *Connector, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxCommandLine)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cmd commandEnvelope
		if err := json.Unmarshal(line, &cmd); err != nil {
			if err := encoder.Encode(outputEnvelope{Type: envelopeError, Data: fmt.Sprintf("invalid command envelope: %v", err)}); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			continue
		}

		state, err := c.Invoke(ctx, cmd.Type, cmd.Input, func(v any) error {
			return encoder.Encode(outputEnvelope{Type: envelopeOutput, Data: v})
		})
		if err != nil {
			if err := encoder.Encode(outputEnvelope{Type: envelopeError, Data: err.Error()}); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			continue
		}

		if state != nil {
			if err := encoder.Encode(outputEnvelope{Type: envelopeState, Data: state}); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
		if err := encoder.Encode(outputEnvelope{Type: envelopeDone}); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}
