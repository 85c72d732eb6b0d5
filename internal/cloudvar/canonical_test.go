package cloudvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSnapshot_SortedKeys(t *testing.T) {
	data, err := MarshalSnapshot(map[string]string{
		"score": "3",
		"name":  "zed",
		"level": "9",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"level":"9","name":"zed","score":"3"}`, string(data))
}

func TestMarshalSnapshot_Empty(t *testing.T) {
	data, err := MarshalSnapshot(nil)
	require.NoError(t, err)

	assert.Equal(t, `{}`, string(data))
}

func TestMarshalSnapshot_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalSnapshot(map[string]string{"msg": "a<b&c>d"})
	require.NoError(t, err)

	assert.Equal(t, `{"msg":"a<b&c>d"}`, string(data))
}

func TestMarshalSnapshot_NFCNormalized(t *testing.T) {
	// Decomposed input must serialize in composed form.
	data, err := MarshalSnapshot(map[string]string{"café": "x"})
	require.NoError(t, err)

	assert.Equal(t, "{\"caf\u00e9\":\"x\"}", string(data))
}

func TestUnmarshalSnapshot_RoundTrip(t *testing.T) {
	orig := map[string]string{"score": "3", "name": "zed"}

	data, err := MarshalSnapshot(orig)
	require.NoError(t, err)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestUnmarshalSnapshot_CoercesNonStrings(t *testing.T) {
	got, err := UnmarshalSnapshot([]byte(`{"score":3,"alive":true}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"score": "3", "alive": "true"}, got)
}

func TestUnmarshalSnapshot_RejectsNonObject(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte(`[1,2,3]`))
	assert.Error(t, err)

	_, err = UnmarshalSnapshot([]byte(`not json`))
	assert.Error(t, err)
}
