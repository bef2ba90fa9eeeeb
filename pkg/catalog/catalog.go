// Package catalog 提供宿主应用的对象目录
//
// Catalog 把对象类型名映射到构造函数和显式声明的方法签名，
// 同时实现 interfaces.ObjectFactory 与 interfaces.SignatureProvider。
//
// 使用示例:
//
//	cat := catalog.New()
//	cat.MustRegister(catalog.Type{
//	    Name: "calculator",
//	    New:  func() any { return &Calculator{} },
//	    Methods: map[string][]string{
//	        "add":      {"a", "b"},
//	        "multiply": {"a", "b"},
//	    },
//	})
//
// 方法名 "add" 对应 Go 方法 Add。方法的第一个参数可以是 context.Context，
// 它不计入声明的参数名；返回值形式可为 ()、(T)、(error)、(T, error)。
package catalog

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Type 对象类型声明
type Type struct {
	// Name 类型名（组合对象名 "kind/id" 中的 kind）
	Name string

	// New 构造新实例，通常返回结构体指针
	New func() any

	// Methods 公开方法 → 有序参数名
	Methods map[string][]string
}

// Catalog 对象类型目录
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// 确保 Catalog 实现对象工厂与签名提供者
var (
	_ interfaces.ObjectFactory     = (*Catalog)(nil)
	_ interfaces.SignatureProvider = (*Catalog)(nil)
)

// New 创建目录
func New(ts ...Type) (*Catalog, error) {
	c := &Catalog{types: make(map[string]*Type)}
	for _, t := range ts {
		if err := c.Register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew 创建目录，声明有误时 panic
func MustNew(ts ...Type) *Catalog {
	c, err := New(ts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register 注册对象类型
//
// 每个声明的方法都必须存在于实例上，且参数个数与声明一致。
func (c *Catalog) Register(t Type) error {
	if t.Name == "" || t.New == nil {
		return fmt.Errorf("catalog: type name and constructor are required")
	}

	v := reflect.ValueOf(t.New())
	for method, params := range t.Methods {
		m := v.MethodByName(exportName(method))
		if !m.IsValid() {
			return fmt.Errorf("catalog: %s has no method %s", t.Name, exportName(method))
		}
		if err := checkSignature(m.Type(), params); err != nil {
			return fmt.Errorf("catalog: %s.%s: %w", t.Name, method, err)
		}
	}

	methods := make(map[string][]string, len(t.Methods))
	for method, params := range t.Methods {
		methods[method] = append([]string(nil), params...)
	}
	t.Methods = methods

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.types[t.Name]; exists {
		return fmt.Errorf("catalog: type %s already registered", t.Name)
	}
	c.types[t.Name] = &t
	return nil
}

// MustRegister 注册对象类型，失败时 panic
func (c *Catalog) MustRegister(t Type) {
	if err := c.Register(t); err != nil {
		panic(err)
	}
}

// Kinds 返回已注册的类型名（有序）
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]string, 0, len(c.types))
	for k := range c.types {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Create 实现 interfaces.ObjectFactory
func (c *Catalog) Create(name string) (interfaces.Object, error) {
	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return &instance{kind: t.Name, typ: t, value: reflect.ValueOf(t.New())}, nil
}

// SignatureOf 实现 interfaces.SignatureProvider
func (c *Catalog) SignatureOf(name, method string) ([]string, error) {
	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	params, ok := t.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: method %s.%s", types.ErrNotFound, t.Name, method)
	}
	return append([]string(nil), params...), nil
}

// Methods 实现 interfaces.SignatureProvider
func (c *Catalog) Methods(name string) (map[string][]string, error) {
	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(t.Methods))
	for method, params := range t.Methods {
		out[method] = append([]string(nil), params...)
	}
	return out, nil
}

func (c *Catalog) lookup(name string) (*Type, error) {
	kind := types.Kind(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[kind]
	if !ok {
		return nil, fmt.Errorf("%w: object type %q", types.ErrNotFound, kind)
	}
	return t, nil
}

// checkSignature 检查 Go 方法与声明的参数名是否匹配
func checkSignature(mt reflect.Type, params []string) error {
	if mt.IsVariadic() {
		return fmt.Errorf("variadic methods are not supported")
	}

	in := mt.NumIn()
	if in > 0 && mt.In(0) == contextType {
		in--
	}
	if in != len(params) {
		return fmt.Errorf("declared %d parameters, method takes %d", len(params), in)
	}

	switch mt.NumOut() {
	case 0, 1:
	case 2:
		if mt.Out(1) != errorType {
			return fmt.Errorf("second result must be error")
		}
	default:
		return fmt.Errorf("too many results")
	}
	return nil
}

// exportName 将方法名首字母大写
func exportName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	if r == utf8.RuneError {
		return method
	}
	return string(unicode.ToUpper(r)) + method[size:]
}
