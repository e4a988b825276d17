package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	mutex       sync.RWMutex
	enumManager = map[reflect.Type]any{}
)

type enum[T comparable] struct {
	toEnum map[string]T
	values []T
}

// New registers value as a member of its enum type and returns it, so enum
// constants can be declared as package variables.
func New[T comparable](value T) T {
	mutex.Lock()
	defer mutex.Unlock()

	t := reflect.TypeOf(value)
	e, ok := enumManager[t].(*enum[T])
	if !ok {
		e = &enum[T]{toEnum: make(map[string]T)}
		enumManager[t] = e
	}

	key := fmt.Sprint(value)
	if _, existed := e.toEnum[key]; !existed {
		e.values = append(e.values, value)
	}
	e.toEnum[key] = value
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values returns all registered members of T in declaration order.
func Values[T comparable]() []T {
	mutex.RLock()
	defer mutex.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.values...)
}
