package animation

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Value is a property value: a number or a string.
type Value struct {
	num   float64
	str   string
	isStr bool
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value { return Value{num: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{str: s, isStr: true} }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.isStr }

// Number returns the numeric value. For strings it returns the leading
// number ("10px" is 10), or 0 when there is none.
func (v Value) Number() float64 {
	if !v.isStr {
		return v.num
	}
	f, _, ok := splitUnit(v.str)
	if !ok {
		return 0
	}
	return f
}

// Text returns the string form of v.
func (v Value) Text() string {
	if v.isStr {
		return v.str
	}
	return formatNumber(v.num)
}

func (v Value) String() string { return v.Text() }

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Target is the capability a host exposes for each animated object. Get
// reports false when the property does not exist.
type Target interface {
	Get(prop string) (Value, bool)
	Set(prop string, v Value)
}

// SetterBinder is implemented by targets that can resolve a property setter
// once instead of looking the property up on every Set.
type SetterBinder interface {
	Bind(prop string) (func(Value), bool)
}

// Adapter turns an arbitrary target into a Target. It reports false when it
// does not handle the value.
type Adapter func(target any) (Target, bool)

// PropertyFuncs adapts a pair of functions into a Target. Pass a pointer so
// the engine can tell targets apart when resolving overwrites.
type PropertyFuncs struct {
	Getter func(prop string) (Value, bool)
	Setter func(prop string, v Value)
}

// Get calls Getter.
func (p *PropertyFuncs) Get(prop string) (Value, bool) {
	if p.Getter == nil {
		return Value{}, false
	}
	return p.Getter(prop)
}

// Set calls Setter.
func (p *PropertyFuncs) Set(prop string, v Value) {
	if p.Setter != nil {
		p.Setter(prop, v)
	}
}

func adaptBuiltin(raw any) (Target, bool) {
	switch t := raw.(type) {
	case nil:
		return nil, false
	case Target:
		return t, true
	case map[string]float64:
		if t == nil {
			return nil, false
		}
		return floatMap(t), true
	case map[string]any:
		if t == nil {
			return nil, false
		}
		return anyMap(t), true
	case *float64:
		if t == nil {
			return nil, false
		}
		return scalar{t}, true
	}
	return adaptStruct(raw)
}

type floatMap map[string]float64

func (m floatMap) Get(prop string) (Value, bool) {
	return NumberValue(m[prop]), true
}

func (m floatMap) Set(prop string, v Value) {
	m[prop] = v.Number()
}

// anyMap keeps the dynamic type of existing entries: an int stays an int and
// a string stays a string.
type anyMap map[string]any

func (m anyMap) Get(prop string) (Value, bool) {
	switch x := m[prop].(type) {
	case nil:
		return NumberValue(0), true
	case string:
		return StringValue(x), true
	case Value:
		return x, true
	default:
		f, ok := toFloat(x)
		if !ok {
			return Value{}, false
		}
		return NumberValue(f), true
	}
}

func (m anyMap) Set(prop string, v Value) {
	switch m[prop].(type) {
	case int:
		m[prop] = int(math.Round(v.Number()))
	case int64:
		m[prop] = int64(math.Round(v.Number()))
	case float32:
		m[prop] = float32(v.Number())
	case Value:
		m[prop] = v
	default:
		if v.IsString() {
			m[prop] = v.Text()
		} else {
			m[prop] = v.Number()
		}
	}
}

// scalar animates a single float. Every property name maps to it.
type scalar struct{ p *float64 }

func (s scalar) Get(string) (Value, bool) { return NumberValue(*s.p), true }
func (s scalar) Set(_ string, v Value)    { *s.p = v.Number() }

// structTarget reflects over a pointer to a struct. Properties name exported
// fields case-insensitively or by their `anim` tag, and dotted paths reach
// into nested structs.
type structTarget struct {
	v reflect.Value
}

func adaptStruct(raw any) (Target, bool) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	return structTarget{v: rv.Elem()}, true
}

func (s structTarget) field(prop string) (reflect.Value, bool) {
	cur := s.v
	for _, name := range strings.Split(prop, ".") {
		for cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				return reflect.Value{}, false
			}
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		idx, ok := fieldIndex(cur.Type(), name)
		if !ok {
			return reflect.Value{}, false
		}
		cur = cur.Field(idx)
	}
	return cur, true
}

func fieldIndex(t reflect.Type, name string) (int, bool) {
	match := -1
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("anim"); ok && strings.EqualFold(tag, name) {
			return i, true
		}
		if match < 0 && strings.EqualFold(f.Name, name) {
			match = i
		}
	}
	return match, match >= 0
}

func (s structTarget) Get(prop string) (Value, bool) {
	f, ok := s.field(prop)
	if !ok {
		return Value{}, false
	}
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return NumberValue(f.Float()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(f.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue(float64(f.Uint())), true
	case reflect.String:
		return StringValue(f.String()), true
	}
	return Value{}, false
}

func (s structTarget) Set(prop string, v Value) {
	if set, ok := s.Bind(prop); ok {
		set(v)
	}
}

func (s structTarget) Bind(prop string) (func(Value), bool) {
	f, ok := s.field(prop)
	if !ok || !f.CanSet() {
		return nil, false
	}
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(v Value) { f.SetFloat(v.Number()) }, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v Value) { f.SetInt(int64(math.Round(v.Number()))) }, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v Value) { f.SetUint(uint64(max(0, math.Round(v.Number())))) }, true
	case reflect.String:
		return func(v Value) { f.SetString(v.Text()) }, true
	}
	return nil, false
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// targetKey identifies reference-like targets, which are not all comparable
// as interface values.
type targetKey struct {
	typ reflect.Type
	ptr uintptr
}

// identityOf returns a comparable key for raw, or nil when raw has no stable
// identity.
func identityOf(raw any) any {
	if raw == nil {
		return nil
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.Slice, reflect.UnsafePointer:
		return targetKey{typ: v.Type(), ptr: v.Pointer()}
	}
	if v.Comparable() {
		return raw
	}
	return nil
}

// toTargets flattens a targets argument into individual targets. Slices and
// arrays are split; addressable struct elements are passed by pointer.
func toTargets(targets any) []any {
	if targets == nil {
		return nil
	}
	if _, ok := targets.(Target); ok {
		return []any{targets}
	}
	if list, ok := targets.([]any); ok {
		var out []any
		for _, t := range list {
			out = append(out, toTargets(t)...)
		}
		return out
	}
	v := reflect.ValueOf(targets)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []any{targets}
	}
	out := make([]any, 0, v.Len())
	for i := range v.Len() {
		e := v.Index(i)
		if e.Kind() == reflect.Struct && e.CanAddr() {
			out = append(out, e.Addr().Interface())
			continue
		}
		out = append(out, e.Interface())
	}
	return out
}

func sameTargets(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameTarget(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameTarget(a, b any) bool {
	ka, kb := identityOf(a), identityOf(b)
	return ka != nil && ka == kb
}

func containsTarget(list []any, t any) bool {
	for _, x := range list {
		if sameTarget(x, t) {
			return true
		}
	}
	return false
}

func containsAnyTarget(list, of []any) bool {
	for _, t := range of {
		if containsTarget(list, t) {
			return true
		}
	}
	return false
}
