package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func between(low, high float64) func(any) error {
	return func(v any) error {
		n, ok := number(v)
		if !ok || n < low || n > high {
			return fmt.Errorf("%v is outside [%g, %g]", v, low, high)
		}
		return nil
	}
}

func above(bound float64) func(any) error {
	return func(v any) error {
		n, ok := number(v)
		if !ok || n <= bound {
			return fmt.Errorf("%v must be greater than %g", v, bound)
		}
		return nil
	}
}

var positive = above(0)

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		s, _ := v.(string)
		if !lo.Contains(options, s) {
			return fmt.Errorf("%q is not one of %s", s, strings.Join(options, ", "))
		}
		return nil
	}
}
