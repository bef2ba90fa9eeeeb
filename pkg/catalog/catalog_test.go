package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dapp/pkg/types"
)

type counter struct {
	n int
}

func (c *counter) Inc(by float64) float64 {
	c.n += int(by)
	return float64(c.n)
}

func (c *counter) Reset() { c.n = 0 }

func (c *counter) Fail() error { return errors.New("counter failed") }

func (c *counter) Scale(ctx context.Context, v []float64, k float64) ([]float64, error) {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out, ctx.Err()
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c *counter) Norm(p point) int { return p.X*p.X + p.Y*p.Y }

func (c *counter) Step(n int8) int8 { return n }

func (c *counter) Skip(n uint16) uint16 { return n }

func newCounterCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := New(Type{
		Name: "counter",
		New:  func() any { return &counter{} },
		Methods: map[string][]string{
			"inc":   {"by"},
			"reset": {},
			"fail":  {},
			"scale": {"values", "factor"},
			"norm":  {"point"},
			"step":  {"n"},
			"skip":  {"n"},
		},
	})
	require.NoError(t, err)
	return cat
}

// TestCatalog_Register 测试类型注册校验
func TestCatalog_Register(t *testing.T) {
	t.Run("MissingMethod", func(t *testing.T) {
		_, err := New(Type{
			Name:    "broken",
			New:     func() any { return &counter{} },
			Methods: map[string][]string{"dec": {"by"}},
		})
		assert.Error(t, err)
	})

	t.Run("ArityMismatch", func(t *testing.T) {
		_, err := New(Type{
			Name:    "broken",
			New:     func() any { return &counter{} },
			Methods: map[string][]string{"inc": {"a", "b"}},
		})
		assert.Error(t, err)
	})

	t.Run("ContextNotCounted", func(t *testing.T) {
		_, err := New(Type{
			Name:    "ok",
			New:     func() any { return &counter{} },
			Methods: map[string][]string{"scale": {"values", "factor"}},
		})
		assert.NoError(t, err)
	})

	t.Run("Duplicate", func(t *testing.T) {
		cat := newCounterCatalog(t)
		err := cat.Register(Type{Name: "counter", New: func() any { return &counter{} }})
		assert.Error(t, err)
	})

	t.Run("MustRegisterPanics", func(t *testing.T) {
		cat := MustNew()
		assert.Panics(t, func() { cat.MustRegister(Type{Name: "x"}) })
	})

	t.Log("✅ 类型注册校验测试通过")
}

// TestCatalog_Signatures 测试签名查询
func TestCatalog_Signatures(t *testing.T) {
	cat := newCounterCatalog(t)

	params, err := cat.SignatureOf("counter", "scale")
	require.NoError(t, err)
	assert.Equal(t, []string{"values", "factor"}, params)

	// 组合名按类型部分查找
	params, err = cat.SignatureOf("counter/7", "inc")
	require.NoError(t, err)
	assert.Equal(t, []string{"by"}, params)

	_, err = cat.SignatureOf("counter", "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = cat.Methods("ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)

	methods, err := cat.Methods("counter")
	require.NoError(t, err)
	assert.Len(t, methods, 5)

	// 返回的是副本
	methods["inc"][0] = "changed"
	params, _ = cat.SignatureOf("counter", "inc")
	assert.Equal(t, []string{"by"}, params)

	assert.Equal(t, []string{"counter"}, cat.Kinds())

	t.Log("✅ 签名查询测试通过")
}

// TestInstance_Invoke 测试反射调用
func TestInstance_Invoke(t *testing.T) {
	cat := newCounterCatalog(t)
	ctx := context.Background()

	obj, err := cat.Create("counter/a")
	require.NoError(t, err)

	t.Run("StatefulCalls", func(t *testing.T) {
		v, err := obj.Invoke(ctx, "inc", []any{float64(2)})
		require.NoError(t, err)
		assert.Equal(t, float64(2), v)

		v, err = obj.Invoke(ctx, "inc", []any{3})
		require.NoError(t, err)
		assert.Equal(t, float64(5), v)
	})

	t.Run("SeparateInstances", func(t *testing.T) {
		other, err := cat.Create("counter/b")
		require.NoError(t, err)
		v, err := other.Invoke(ctx, "inc", []any{1})
		require.NoError(t, err)
		assert.Equal(t, float64(1), v)
	})

	t.Run("NoResult", func(t *testing.T) {
		v, err := obj.Invoke(ctx, "reset", nil)
		assert.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("ErrorResult", func(t *testing.T) {
		_, err := obj.Invoke(ctx, "fail", nil)
		assert.EqualError(t, err, "counter failed")
	})

	t.Run("JSONConversion", func(t *testing.T) {
		v, err := obj.Invoke(ctx, "scale", []any{[]any{float64(1), float64(2)}, float64(3)})
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 6}, v)

		v, err = obj.Invoke(ctx, "norm", []any{map[string]any{"x": float64(3), "y": float64(4)}})
		require.NoError(t, err)
		assert.Equal(t, 25, v)
	})

	t.Run("MissingArgsAreZero", func(t *testing.T) {
		v, err := obj.Invoke(ctx, "norm", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})

	t.Run("TooManyArgs", func(t *testing.T) {
		_, err := obj.Invoke(ctx, "inc", []any{1, 2})
		assert.ErrorIs(t, err, types.ErrProtocol)
	})

	t.Run("BadArgType", func(t *testing.T) {
		_, err := obj.Invoke(ctx, "inc", []any{"two"})
		assert.ErrorIs(t, err, types.ErrProtocol)
	})

	t.Run("IntegralNumbers", func(t *testing.T) {
		v, err := obj.Invoke(ctx, "step", []any{float64(-3)})
		require.NoError(t, err)
		assert.Equal(t, int8(-3), v)

		v, err = obj.Invoke(ctx, "skip", []any{float64(65535)})
		require.NoError(t, err)
		assert.Equal(t, uint16(65535), v)
	})

	t.Run("LossyNumbersRejected", func(t *testing.T) {
		for _, tc := range []struct {
			method string
			arg    any
		}{
			{"step", 2.7},
			{"step", float64(300)},
			{"step", -129},
			{"skip", float64(-1)},
			{"skip", 70000},
			{"skip", 0.5},
		} {
			_, err := obj.Invoke(ctx, tc.method, []any{tc.arg})
			assert.ErrorIs(t, err, types.ErrProtocol, "%s(%v)", tc.method, tc.arg)
		}
	})

	t.Run("UndeclaredMethod", func(t *testing.T) {
		_, err := obj.Invoke(ctx, "value", nil)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := cat.Create("ghost")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Log("✅ 反射调用测试通过")
}
