package store

import (
	"fmt"
	"reflect"
	"strings"
)

// encodeDoc turns a write payload (a Fields map or a struct with firestore
// tags) into a Fields map for the memory store.
func encodeDoc(data interface{}) (Fields, error) {
	if data == nil {
		return nil, fmt.Errorf("nil document payload")
	}
	if fields, ok := data.(Fields); ok {
		return copyFields(fields), nil
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil document payload")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported document payload type %T", data)
	}

	fields := Fields{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name := fieldName(field)
		if name == "" {
			continue
		}
		fields[name] = rv.Field(i).Interface()
	}
	return fields, nil
}

// decodeDoc fills a struct pointer from a Fields map, matching firestore tags
func decodeDoc(fields Fields, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("decode target must point to a struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name := fieldName(field)
		if name == "" {
			continue
		}
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := assignValue(rv.Field(i), raw); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	return nil
}

// fieldName resolves the document key for a struct field from its firestore
// tag, falling back to the field name the way the Firestore SDK does.
func fieldName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("firestore")
	if !ok {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func assignValue(dst reflect.Value, src interface{}) error {
	if src == nil {
		return nil
	}
	sv := reflect.ValueOf(src)
	st, dt := sv.Type(), dst.Type()

	if st.AssignableTo(dt) {
		dst.Set(sv)
		return nil
	}
	if st.ConvertibleTo(dt) && (st.Kind() == dt.Kind() || (isNumericKind(st.Kind()) && isNumericKind(dt.Kind()))) {
		dst.Set(sv.Convert(dt))
		return nil
	}

	switch {
	case sv.Kind() == reflect.Slice && dst.Kind() == reflect.Slice:
		out := reflect.MakeSlice(dt, sv.Len(), sv.Len())
		for i := 0; i < sv.Len(); i++ {
			if err := assignValue(out.Index(i), sv.Index(i).Interface()); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case sv.Kind() == reflect.Map && dst.Kind() == reflect.Map:
		out := reflect.MakeMap(dt)
		iter := sv.MapRange()
		for iter.Next() {
			key := iter.Key()
			if !key.Type().ConvertibleTo(dt.Key()) {
				return fmt.Errorf("cannot decode map key %s into %s", key.Type(), dt.Key())
			}
			elem := reflect.New(dt.Elem()).Elem()
			if err := assignValue(elem, iter.Value().Interface()); err != nil {
				return err
			}
			out.SetMapIndex(key.Convert(dt.Key()), elem)
		}
		dst.Set(out)
		return nil
	}
	return fmt.Errorf("cannot decode %T into %s", src, dt)
}
