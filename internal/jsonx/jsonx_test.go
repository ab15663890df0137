package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsKeyOrder(t *testing.T) {
	v, err := Unmarshal([]byte(`{"zeta":1,"alpha":{"y":true,"b":null},"mid":[1,"x"]}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	inner, _ := obj.Get("alpha")
	assert.Equal(t, []string{"y", "b"}, inner.(*Object).Keys())

	n, _ := obj.Get("zeta")
	assert.Equal(t, json.Number("1"), n)
}

func TestDecode_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	v, err := Unmarshal([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)

	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	got, _ := obj.Get("a")
	assert.Equal(t, json.Number("3"), got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated", `{"a":`},
		{"trailing data", `{} {}`},
		{"not json", `internal error`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecode_Scalars(t *testing.T) {
	v, err := Unmarshal([]byte(` "nan" `))
	require.NoError(t, err)
	assert.Equal(t, "nan", v)

	v, err = Unmarshal([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestIndent_RoundTripsOrderAndNumbers(t *testing.T) {
	src := `{"b":1.50,"a":[],"c":{},"d":"<tag> & co"}`
	v, err := Unmarshal([]byte(src))
	require.NoError(t, err)

	out, err := Indent(v)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1.50,\n  \"a\": [],\n  \"c\": {},\n  \"d\": \"<tag> & co\"\n}", out)

	compact, err := Compact(v)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1.50,"a":[],"c":{},"d":"<tag> & co"}`, compact)
}

func TestObject_NilSafe(t *testing.T) {
	var o *Object
	_, ok := o.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, o.Len())
	assert.Nil(t, o.Keys())
}
