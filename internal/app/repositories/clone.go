package repositories

import "reflect"

// Clone returns a deep copy of row. Pointers, slices, maps and interface
// values reachable through exported fields are copied, so writes through
// the copy never reach row.
func Clone[T any](row *T) *T {
	if row == nil {
		return nil
	}
	out := new(T)
	reflect.ValueOf(out).Elem().Set(copyValue(reflect.ValueOf(row).Elem()))
	return out
}

func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(copyValue(v.Elem()))
		return p
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		s := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			s.Index(i).Set(copyValue(v.Index(i)))
		}
		return s
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		m := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}
		return m
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		i := reflect.New(v.Type()).Elem()
		i.Set(copyValue(v.Elem()))
		return i
	case reflect.Struct:
		s := reflect.New(v.Type()).Elem()
		s.Set(v)
		for i := 0; i < s.NumField(); i++ {
			// Unexported fields keep the shallow copy made above
			if field := s.Field(i); field.CanSet() {
				field.Set(copyValue(v.Field(i)))
			}
		}
		return s
	default:
		return v
	}
}
