package rpc

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dapp/pkg/types"
)

func TestNewCall(t *testing.T) {
	req, err := NewCall("multiply", []any{2, 3})
	require.NoError(t, err)
	assert.Equal(t, "multiply", req.Method)
	assert.JSONEq(t, `[2,3]`, string(req.Params))

	var id string
	require.NoError(t, json.Unmarshal(req.ID, &id))
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	t.Run("NilArgs", func(t *testing.T) {
		req, err := NewCall("now", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(req.Params))
	})

	t.Run("Unencodable", func(t *testing.T) {
		_, err := NewCall("add", []any{make(chan int)})
		assert.ErrorIs(t, err, types.ErrProtocol)
	})
}

func TestDecodeCall(t *testing.T) {
	req, err := DecodeCall([]byte(`{"id":7,"method":"add","params":{"a":3,"b":4}}`))
	require.NoError(t, err)
	assert.Equal(t, "add", req.Method)
	assert.Equal(t, json.RawMessage(`7`), req.ID)
	assert.True(t, req.IsNamed())

	data, err := EncodeCall(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"method":"add","params":{"a":3,"b":4}}`, string(data))

	for name, body := range map[string]string{
		"Empty":         ``,
		"Blank":         "  \n",
		"NotJSON":       `method=add`,
		"MissingMethod": `{"params":[1]}`,
		"ScalarParams":  `{"method":"add","params":5}`,
		"Array":         `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCall([]byte(body))
			assert.ErrorIs(t, err, types.ErrProtocol)
		})
	}
}

func TestResultCodec(t *testing.T) {
	data := EncodeResult(types.NewResultEnvelope(nil, 6.0, nil))
	assert.JSONEq(t, `{"id":null,"result":6,"error":null}`, string(data))

	res, err := DecodeResult(data)
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Result)
	assert.NoError(t, res.Err())

	t.Run("StringError", func(t *testing.T) {
		res, err := DecodeResult([]byte(`{"id":"x","result":null,"error":"boom"}`))
		require.NoError(t, err)
		require.Error(t, res.Err())
		assert.Equal(t, "boom", res.Error.Message)
	})

	t.Run("Unencodable", func(t *testing.T) {
		data := EncodeResult(types.NewResultEnvelope(json.RawMessage(`1`), make(chan int), nil))
		res, err := DecodeResult(data)
		require.NoError(t, err)
		assert.ErrorIs(t, res.Err(), types.ErrInvoke)
		assert.Equal(t, json.RawMessage(`1`), res.ID)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeResult([]byte(`<html>`))
		assert.ErrorIs(t, err, types.ErrProtocol)
	})
}

func TestPositional(t *testing.T) {
	args, err := Positional(json.RawMessage(`[2, "x", [1,2], {"k":1}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{2.0, "x", []any{1.0, 2.0}, map[string]any{"k": 1.0}}, args)

	args, err = Positional(nil)
	require.NoError(t, err)
	assert.Nil(t, args)

	args, err = Positional(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = Positional(json.RawMessage(`{"a":1}`))
	assert.ErrorIs(t, err, types.ErrProtocol)
}

func TestNamedToPositional(t *testing.T) {
	args, err := NamedToPositional([]string{"a", "b"}, map[string]any{"b": 4.0, "a": 3.0})
	require.NoError(t, err)
	assert.Equal(t, []any{3.0, 4.0}, args)

	t.Run("Missing", func(t *testing.T) {
		args, err := NamedToPositional([]string{"a", "b"}, map[string]any{"a": 1.0})
		require.NoError(t, err)
		assert.Equal(t, []any{1.0, nil}, args)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := NamedToPositional([]string{"a"}, map[string]any{"z": 1.0})
		assert.ErrorIs(t, err, types.ErrProtocol)
	})
}
