package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// UnknownKeyError names a key missing from Default and the closest registered one.
type UnknownKeyError struct {
	Key     string
	Closest string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, e.Closest)
}

// Lookup returns the registered field for k.
func Lookup(k string) (Field, error) {
	if f, ok := Default[k]; ok {
		return f, nil
	}

	closest := lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
	return Field{}, &UnknownKeyError{Key: k, Closest: closest}
}

// Parse converts command-line words into a value of the field's type and checks it.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("no value given")
	}

	var (
		v   any
		err error
	)
	switch f.Value.(type) {
	case string:
		v = raw[0]
	case int:
		v, err = strconv.Atoi(raw[0])
	case float64:
		v, err = strconv.ParseFloat(raw[0], 64)
	case bool:
		v, err = strconv.ParseBool(raw[0])
	case []string:
		v = raw
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.typeName())
	}
	if err != nil {
		return nil, fmt.Errorf("%s expects a %s: %w", f.Key, f.typeName(), err)
	}

	if f.Check != nil {
		if err := f.Check(v); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
	}

	return v, nil
}

// Path is the file Write persists to.
func Path() string {
	return filepath.Join(where.Config(), constant.Marquee+".toml")
}

// Write persists the current viper state, creating the file when it does not exist yet.
func Write() error {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}
	return err
}

// Remove deletes the config file. Defaults apply again on the next run.
func Remove() error {
	return filesystem.API().Remove(Path())
}
