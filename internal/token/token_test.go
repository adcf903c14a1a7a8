package token

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_NumberAndStringAreDistinct(t *testing.T) {
	var numeric, str ID
	require.NoError(t, json.Unmarshal([]byte(`1`), &numeric))
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &str))

	assert.True(t, numeric.Defined())
	assert.True(t, str.Defined())
	assert.NotEqual(t, numeric, str, "number 1 and string \"1\" must not collide")
	assert.Equal(t, numeric, NumberID(1))
	assert.Equal(t, str, StringID("1"))
}

func TestID_RoundTrip(t *testing.T) {
	for _, raw := range []string{`1755892301000`, `"goblin-3"`, `""`, `0`} {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(raw), &id))
		out, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Equal(t, raw, string(out))
		assert.True(t, id.Defined())
	}
}

func TestID_RejectsNonScalar(t *testing.T) {
	for _, raw := range []string{`true`, `[1]`, `{"a":1}`} {
		var id ID
		assert.Error(t, json.Unmarshal([]byte(raw), &id), "input %s", raw)
	}
}

func TestID_NullIsUndefined(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.False(t, id.Defined())
}

func TestToken_Valid(t *testing.T) {
	ok := Token{ID: NumberID(1), Src: "/x.png"}
	assert.True(t, ok.Valid())

	assert.False(t, Token{Src: "/x.png"}.Valid(), "missing id")
	assert.False(t, Token{ID: NumberID(1)}.Valid(), "empty src")

	// Numeric fields are not part of the predicate.
	assert.True(t, Token{ID: StringID("a"), Src: "s"}.Valid())
}

func TestToken_UnknownFieldsRoundTrip(t *testing.T) {
	raw := `{"id":7,"src":"/orc.png","x":10,"y":20,"width":100,"height":100,"label":"Orc","locked":true}`

	var tok Token
	require.NoError(t, json.Unmarshal([]byte(raw), &tok))
	assert.Equal(t, NumberID(7), tok.ID)
	assert.Equal(t, "/orc.png", tok.Src)
	assert.Equal(t, 10.0, tok.X)
	assert.Equal(t, 100.0, tok.Height)

	out, err := json.Marshal(tok)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Orc", decoded["label"], "unknown fields must survive the round trip")
	assert.Equal(t, true, decoded["locked"])
	assert.Equal(t, 20.0, decoded["y"])
}

func TestToken_AbsentNumericFieldsTolerated(t *testing.T) {
	var tok Token
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","src":"/a.png"}`), &tok))
	assert.True(t, tok.Valid())
	assert.Zero(t, tok.X)
	assert.Zero(t, tok.Width)
}
