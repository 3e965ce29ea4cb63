package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelopes(t *testing.T, out *bytes.Buffer) []outputEnvelope {
	t.Helper()
	var envelopes []outputEnvelope
	decoder := json.NewDecoder(out)
	for decoder.More() {
		var env outputEnvelope
		require.NoError(t, decoder.Decode(&env))
		envelopes = append(envelopes, env)
	}
	return envelopes
}

func TestRunSubprocessSession(t *testing.T) {
	dir := &fakeDirectory{identities: testIdentities()}
	c := newTestConnector(t, dir)

	in := strings.NewReader(`{"type":"std:account:list","input":{}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, runSubprocess(context.Background(), c, in, &out))

	envelopes := decodeEnvelopes(t, &out)
	require.Len(t, envelopes, 4)
	assert.Equal(t, envelopeOutput, envelopes[0].Type)
	assert.Equal(t, envelopeOutput, envelopes[1].Type)
	assert.Equal(t, envelopeState, envelopes[2].Type)
	assert.Equal(t, envelopeDone, envelopes[3].Type)
}

func TestRunSubprocessContinuesAfterError(t *testing.T) {
	c := newTestConnector(t, &fakeDirectory{identities: testIdentities()})

	session := `{"type":"std:nope","input":{}}
not even json
{"type":"std:test-connection"}
`
	var out bytes.Buffer
	require.NoError(t, runSubprocess(context.Background(), c, strings.NewReader(session), &out))

	envelopes := decodeEnvelopes(t, &out)
	require.Len(t, envelopes, 4)
	assert.Equal(t, envelopeError, envelopes[0].Type)
	assert.Equal(t, envelopeError, envelopes[1].Type)
	assert.Equal(t, envelopeOutput, envelopes[2].Type)
	assert.Equal(t, envelopeDone, envelopes[3].Type)
}

func TestRunSubprocessSkipsBlankLines(t *testing.T) {
	c := newTestConnector(t, &fakeDirectory{})

	var out bytes.Buffer
	require.NoError(t, runSubprocess(context.Background(), c, strings.NewReader("\n\n"), &out))
	assert.Empty(t, decodeEnvelopes(t, &out))
}
