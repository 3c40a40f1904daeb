// Package config wires the settings registry in Default into viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer turns gesture.double_tap_ms into gesture_double_tap_ms for environment lookups.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads marquee.toml from where.Config() on top of the registered defaults.
// A missing file is not an error.
func Setup() error {
	viper.SetConfigName(constant.Marquee)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Marquee)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("read config: %w", err)
}
