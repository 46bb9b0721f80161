package config

import (
	"fmt"
	"strconv"
	"sync"
)

type paramValue interface {
	setValue(newVal interface{}) error
}

// Values may be refreshed in background while being read by handlers
var valuesLock sync.RWMutex

// StringVal represents a string param value
type StringVal struct {
	val *string
}

// NewStringVal creates a string value instance.
// Avoid using directly for anything other than unit testing
func NewStringVal(initialValue string) StringVal {
	return StringVal{val: &initialValue}
}

// Value returns underlying value of a given param
func (val StringVal) Value() string {
	valuesLock.RLock()
	defer valuesLock.RUnlock()
	return *val.val
}

func (val StringVal) setValue(newVal interface{}) error {
	var strVal string
	switch v := newVal.(type) {
	case string:
		strVal = v
	case float64:
		strVal = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("Expected string value but got: %v(%[1]T)", newVal)
	}
	valuesLock.Lock()
	defer valuesLock.Unlock()
	*val.val = strVal
	return nil
}

// IntVal represents an int param value
type IntVal struct {
	val *int
}

// NewIntVal creates an int value instance.
// Avoid using directly for anything other than unit testing
func NewIntVal(initialValue int) IntVal {
	return IntVal{val: &initialValue}
}

// Value returns underlying value of a given param
func (val IntVal) Value() int {
	valuesLock.RLock()
	defer valuesLock.RUnlock()
	return *val.val
}

func (val IntVal) setValue(newVal interface{}) error {
	var intVal int
	switch v := newVal.(type) {
	case int:
		intVal = v
	case float64:
		intVal = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Expected int value but got: %v(%[1]T)", newVal)
		}
		intVal = parsed
	default:
		return fmt.Errorf("Expected int value but got: %v(%[1]T)", newVal)
	}
	valuesLock.Lock()
	defer valuesLock.Unlock()
	*val.val = intVal
	return nil
}

// BoolVal represents a bool param value
type BoolVal struct {
	val *bool
}

// NewBoolVal creates a bool value instance.
// Avoid using directly for anything other than unit testing
func NewBoolVal(initialValue bool) BoolVal {
	return BoolVal{val: &initialValue}
}

// Value returns underlying value of a given param
func (val BoolVal) Value() bool {
	valuesLock.RLock()
	defer valuesLock.RUnlock()
	return *val.val
}

func (val BoolVal) setValue(newVal interface{}) error {
	var boolVal bool
	switch v := newVal.(type) {
	case bool:
		boolVal = v
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("Expected bool value but got: %v(%[1]T)", newVal)
		}
		boolVal = parsed
	default:
		return fmt.Errorf("Expected bool value but got: %v(%[1]T)", newVal)
	}
	valuesLock.Lock()
	defer valuesLock.Unlock()
	*val.val = boolVal
	return nil
}
