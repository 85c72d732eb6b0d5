package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSet(t *testing.T) {
	data, err := EncodeSet("score", "42")
	require.NoError(t, err)

	assert.Equal(t, `{"kind":"set","var":"score","value":"42"}`+"\n", string(data))
}

func TestEncodeHandshake(t *testing.T) {
	data, err := EncodeHandshake("proj-1", "player_a1b2", map[string]string{"score": "0"})
	require.NoError(t, err)

	assert.Equal(t,
		`{"kind":"handshake","id":"proj-1","username":"player_a1b2","variables":{"score":"0"}}`+"\n",
		string(data))
}

func TestEncodeHandshake_NilVariables(t *testing.T) {
	data, err := EncodeHandshake("proj-1", "u", nil)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"variables":{}`)
}

func TestDecodePayload_SingleMessage(t *testing.T) {
	msgs, err := DecodePayload([]byte(`{"kind":"set","var":"score","value":"42"}`))
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	kind, ok := msgs[0].Kind()
	require.True(t, ok)
	assert.Equal(t, KindSet, kind)

	set, ok := msgs[0].AsSet()
	require.True(t, ok)
	assert.Equal(t, "score", set.Var)
	assert.Equal(t, "42", set.Value)
}

func TestDecodePayload_MultipleMessages(t *testing.T) {
	payload := `{"kind":"set","var":"score","value":"42"}` + "\n" + `{"kind":"ping"}`

	msgs, err := DecodePayload([]byte(payload))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	kind, ok := msgs[1].Kind()
	require.True(t, ok)
	assert.Equal(t, "ping", kind)
}

func TestDecodePayload_TrailingNewlineAndBlanks(t *testing.T) {
	payload := "\n" + `{"kind":"ping"}` + "\n\n"

	msgs, err := DecodePayload([]byte(payload))
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestDecodePayload_MalformedLineRejectsWholePayload(t *testing.T) {
	payload := `{"kind":"set","var":"score","value":"42"}` + "\n" + `{not json`

	msgs, err := DecodePayload([]byte(payload))
	assert.Error(t, err)
	assert.Nil(t, msgs)
}

func TestRawMessage_Kind_Missing(t *testing.T) {
	msgs, err := DecodePayload([]byte(`{"var":"score","value":"42"}`))
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, ok := msgs[0].Kind()
	assert.False(t, ok)
}

func TestRawMessage_Kind_NonString(t *testing.T) {
	msgs, err := DecodePayload([]byte(`{"kind":7}`))
	require.NoError(t, err)

	_, ok := msgs[0].Kind()
	assert.False(t, ok)
}

func TestRawMessage_AsSet_MissingFields(t *testing.T) {
	cases := []string{
		`{"kind":"set"}`,
		`{"kind":"set","var":"score"}`,
		`{"kind":"set","value":"42"}`,
		`{"kind":"set","var":1,"value":"42"}`,
		`{"kind":"set","var":"score","value":42}`,
	}
	for _, payload := range cases {
		msgs, err := DecodePayload([]byte(payload))
		require.NoError(t, err, payload)
		require.Len(t, msgs, 1, payload)

		_, ok := msgs[0].AsSet()
		assert.False(t, ok, payload)
	}
}
