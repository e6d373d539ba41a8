// Copyright 2021 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"errors"
	"reflect"
	"strconv"
	"time"
)

// assign 把驱动返回的值赋给字段.
// 允许的转换:
//   - 整数 -> 整数, 要求不溢出
//   - 整数, 浮点数 -> 浮点数
//   - 整数 1/0 -> bool
//   - []byte, string -> string
//   - 数字文本 -> 数字, MySQL 文本协议返回的就是 []byte
//   - time.Time -> time.Time
//
// 返回的 error 只表示不能转换, 由调用方包装成 MappingError
func assign(dst reflect.Value, src any) error {
	if src == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		default:
			return errNull
		}
	}
	if dst.Kind() == reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if err := assign(ptr.Elem(), src); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	}
	if dst.Kind() == reflect.Interface {
		dst.Set(reflect.ValueOf(src))
		return nil
	}

	sv := reflect.ValueOf(src)
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := asInt(sv)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return errOverflow
		}
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := asUint(sv)
		if err != nil {
			return err
		}
		if dst.OverflowUint(u) {
			return errOverflow
		}
		dst.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := asFloat(sv)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return errOverflow
		}
		dst.SetFloat(f)
		return nil
	case reflect.Bool:
		b, err := asBool(sv)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil
	case reflect.String:
		switch v := src.(type) {
		case string:
			dst.SetString(v)
			return nil
		case []byte:
			dst.SetString(string(v))
			return nil
		}
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		switch v := src.(type) {
		case []byte:
			dst.SetBytes(append([]byte(nil), v...))
			return nil
		case string:
			dst.SetBytes([]byte(v))
			return nil
		}
	case reflect.Struct:
		if t, ok := src.(time.Time); ok && dst.Type() == timeType {
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return errUnsupported
}

var (
	errNull        = errors.New("NULL 只能赋值给指针字段")
	errOverflow    = errors.New("数值溢出")
	errUnsupported = errors.New("不支持的类型转换")
)

func asInt(sv reflect.Value) (int64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := sv.Uint()
		if u > 1<<63-1 {
			return 0, errOverflow
		}
		return int64(u), nil
	case reflect.String:
		return strconv.ParseInt(sv.String(), 10, 64)
	case reflect.Slice:
		if sv.Type().Elem().Kind() == reflect.Uint8 {
			return strconv.ParseInt(string(sv.Bytes()), 10, 64)
		}
	}
	return 0, errUnsupported
}

func asUint(sv reflect.Value) (uint64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := sv.Int()
		if i < 0 {
			return 0, errOverflow
		}
		return uint64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return sv.Uint(), nil
	case reflect.String:
		return strconv.ParseUint(sv.String(), 10, 64)
	case reflect.Slice:
		if sv.Type().Elem().Kind() == reflect.Uint8 {
			return strconv.ParseUint(string(sv.Bytes()), 10, 64)
		}
	}
	return 0, errUnsupported
}

func asFloat(sv reflect.Value) (float64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(sv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(sv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return sv.Float(), nil
	case reflect.String:
		return strconv.ParseFloat(sv.String(), 64)
	case reflect.Slice:
		if sv.Type().Elem().Kind() == reflect.Uint8 {
			return strconv.ParseFloat(string(sv.Bytes()), 64)
		}
	}
	return 0, errUnsupported
}

func asBool(sv reflect.Value) (bool, error) {
	switch sv.Kind() {
	case reflect.Bool:
		return sv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch sv.Int() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch sv.Uint() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case reflect.Slice:
		if sv.Type().Elem().Kind() == reflect.Uint8 {
			switch string(sv.Bytes()) {
			case "0":
				return false, nil
			case "1":
				return true, nil
			}
		}
	}
	return false, errUnsupported
}

var errInvalidDest = errors.New("目标必须是非 nil 的指针")

// AssignValue 按照 assign 的规则把 src 赋值给 *dest, src 为 NULL 的时候 *dest 被设置为零值
func AssignValue(dest any, src any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return errInvalidDest
	}
	elem := dv.Elem()
	if src == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	return assign(elem, src)
}
