package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/dep2p/go-dapp/pkg/types"
)

// instance 基于反射的 Object 实现
//
// 同一实例上的调用互斥执行，有状态对象一次只看到一个调用。
type instance struct {
	kind  string
	typ   *Type
	value reflect.Value

	mu sync.Mutex
}

// Invoke 实现 interfaces.Object
func (o *instance) Invoke(ctx context.Context, method string, args []any) (any, error) {
	if _, declared := o.typ.Methods[method]; !declared {
		return nil, fmt.Errorf("%w: method %s.%s", types.ErrNotFound, o.kind, method)
	}

	m := o.value.MethodByName(exportName(method))
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: method %s.%s", types.ErrNotFound, o.kind, method)
	}

	in, err := buildArgs(ctx, m.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", types.ErrProtocol, o.kind, method, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	return splitResults(m.Call(in))
}

// Value 返回底层实例
func (o *instance) Value() any {
	return o.value.Interface()
}

// buildArgs 将位置参数转换为方法的参数类型
//
// 缺少的参数取零值，多余的参数视为错误。
func buildArgs(ctx context.Context, mt reflect.Type, args []any) ([]reflect.Value, error) {
	n := mt.NumIn()
	in := make([]reflect.Value, 0, n)

	offset := 0
	if n > 0 && mt.In(0) == contextType {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
		offset = 1
	}

	if len(args) > n-offset {
		return nil, fmt.Errorf("too many arguments: got %d, want %d", len(args), n-offset)
	}

	for i := offset; i < n; i++ {
		pt := mt.In(i)
		if i-offset >= len(args) {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v, err := convert(args[i-offset], pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i-offset, err)
		}
		in = append(in, v)
	}
	return in, nil
}

// convert 将单个参数值转换为目标类型
func convert(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(v, t)
	}

	// 其余情况经 JSON 往返转换（map → struct、[]any → []float64 等）
	data, err := json.Marshal(arg)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), t)
	}
	return ptr.Elem(), nil
}

// convertNumber 数值间转换，不接受截断与溢出
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	bad := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("cannot use %v as %s", v.Interface(), t)
	}

	switch {
	case isFloat(t.Kind()):
		f := v.Convert(reflect.TypeOf(float64(0))).Float()
		if out.OverflowFloat(f) {
			return bad()
		}
		out.SetFloat(f)

	case isSigned(t.Kind()):
		var i int64
		switch {
		case isSigned(v.Kind()):
			i = v.Int()
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return bad()
			}
			i = int64(f)
		default:
			u := v.Uint()
			if u > math.MaxInt64 {
				return bad()
			}
			i = int64(u)
		}
		if out.OverflowInt(i) {
			return bad()
		}
		out.SetInt(i)

	default:
		var u uint64
		switch {
		case isSigned(v.Kind()):
			i := v.Int()
			if i < 0 {
				return bad()
			}
			u = uint64(i)
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return bad()
			}
			u = uint64(f)
		default:
			u = v.Uint()
		}
		if out.OverflowUint(u) {
			return bad()
		}
		out.SetUint(u)
	}
	return out, nil
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// splitResults 拆分方法返回值
func splitResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		if err := asError(out[1]); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
