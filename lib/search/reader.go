// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"fmt"
	"reflect"
	"strings"
)

// Reader extracts the display string from an option. The pipeline
// filters and the widget renders using this text.
type Reader[T any] func(option T) string

// FieldReader builds a Reader that resolves a dotted field path
// against each option via reflection: "Name" reads a struct field,
// "Author.Name" follows nesting, and map[string]... values are
// indexed by key. Pointers are dereferenced along the way.
//
// A path that does not resolve (missing field, nil pointer, wrong
// kind) reads as the empty string rather than failing; malformed
// paths are a display problem, not an error.
func FieldReader[T any](path string) Reader[T] {
	segments := strings.Split(path, ".")
	return func(option T) string {
		value := reflect.ValueOf(option)
		for _, segment := range segments {
			value = indirect(value)
			if !value.IsValid() {
				return ""
			}
			switch value.Kind() {
			case reflect.Struct:
				value = value.FieldByName(segment)
			case reflect.Map:
				if value.Type().Key().Kind() != reflect.String {
					return ""
				}
				value = value.MapIndex(reflect.ValueOf(segment))
			default:
				return ""
			}
		}
		return stringify(indirect(value))
	}
}

// indirect walks pointers and interfaces down to a concrete value.
// Returns an invalid Value for nils.
func indirect(value reflect.Value) reflect.Value {
	for value.IsValid() && (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) {
		if value.IsNil() {
			return reflect.Value{}
		}
		value = value.Elem()
	}
	return value
}

// stringify renders a resolved leaf value as display text.
func stringify(value reflect.Value) string {
	if !value.IsValid() {
		return ""
	}
	if value.Kind() == reflect.String {
		return value.String()
	}
	if !value.CanInterface() {
		return ""
	}
	return fmt.Sprint(value.Interface())
}
