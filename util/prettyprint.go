// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
)

// PrettyPrint renders obj as indented "Field: value" lines. Values with a
// String method print through it; byte slices print as hex.
func PrettyPrint(obj interface{}) string {
	if obj == nil {
		return "Nil"
	}
	if s, ok := obj.(fmt.Stringer); ok {
		if val := reflect.ValueOf(obj); val.Kind() != reflect.Ptr || !val.IsNil() {
			return s.String()
		}
	}
	val := reflect.ValueOf(obj)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		return printValue(val.Elem())
	case reflect.Array, reflect.Slice:
		return arrayPrint(val)
	case reflect.Struct:
		return structPrint(val)
	case reflect.Map:
		return mapPrint(val)
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ""
	default:
		return fmt.Sprint(obj)
	}
}

func printValue(v reflect.Value) string {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return "Nil"
	}
	if v.CanInterface() {
		return PrettyPrint(v.Interface())
	}
	return ""
}

func arrayPrint(value reflect.Value) string {
	if value.Type().Elem().Kind() == reflect.Uint8 {
		raw := make([]byte, value.Len())
		for i := range raw {
			raw[i] = byte(value.Index(i).Uint())
		}
		return "0x" + hex.EncodeToString(raw)
	}
	toPrint := "Array"
	for i := 0; i < value.Len(); i++ {
		toPrint += "\n"
		toPrint += addIdent(fmt.Sprintf("%d:\t%s", i, printValue(value.Index(i))))
	}
	return toPrint
}

func structPrint(value reflect.Value) string {
	t := value.Type()
	toPrint := t.Name()
	for i := 0; i < value.NumField(); i++ {
		fieldValue := value.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}
		toPrint += "\n"
		toPrint += addIdent(fmt.Sprintf("%s:\t%s", t.Field(i).Name, printValue(fieldValue)))
	}
	return toPrint
}

func mapPrint(value reflect.Value) string {
	toPrint := "Map"
	for _, key := range value.MapKeys() {
		toPrint += "\n"
		toPrint += fmt.Sprintf("%s:\t%s", printValue(key), printValue(value.MapIndex(key)))
	}
	return toPrint
}

func addIdent(str string) string {
	return strings.Replace(str, "\n", "\n--", -1)
}
