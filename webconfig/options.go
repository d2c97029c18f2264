/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package webconfig is the server's configuration surface: an Options
// struct loaded from an INI file via viper, overridable by CLI flags, and
// validated with go-playground/validator, following the same
// tag-annotated-struct pattern the logger package's own config model uses.
package webconfig

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Scripting holds the [scripting] section.
type Scripting struct {
	Enabled           bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	ErrorOutputSocket bool   `mapstructure:"error_output_socket" json:"error_output_socket" yaml:"error_output_socket"`
	SessionTimeout    int    `mapstructure:"session_timeout" json:"session_timeout" yaml:"session_timeout" validate:"gte=0"`
	Caching           bool   `mapstructure:"caching" json:"caching" yaml:"caching"`
}

// ScriptingCache holds the [scripting_cache] section. Per the compiled
// server-page cache Open Question (see DESIGN.md), these keys are accepted
// and stored for forward compatibility only; no caching behaviour is
// implemented against them.
type ScriptingCache struct {
	Enabled  bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	MaxItems int  `mapstructure:"max_items" json:"max_items" yaml:"max_items" validate:"gte=0"`
}

// Options is the full [server]/[scripting]/[scripting_cache] configuration
// surface, settable from an INI file, environment, or CLI flag overlay.
type Options struct {
	Port               int    `mapstructure:"port" json:"port" yaml:"port" validate:"required,gte=1,lte=65535"`
	WWWRoot            string `mapstructure:"wwwroot" json:"wwwroot" yaml:"wwwroot" validate:"required"`
	LogFile            string `mapstructure:"logfile" json:"logfile" yaml:"logfile"`
	LogLevelFile       string `mapstructure:"loglevel_file" json:"loglevel_file" yaml:"loglevel_file"`
	LogLevelConsole    string `mapstructure:"loglevel_console" json:"loglevel_console" yaml:"loglevel_console"`
	IPv6               bool   `mapstructure:"ipv6" json:"ipv6" yaml:"ipv6"`
	Deflate            int    `mapstructure:"deflate" json:"deflate" yaml:"deflate" validate:"gte=0,lte=9"`
	DisableEmbeddedRes bool   `mapstructure:"disable_embedded_res" json:"disable_embedded_res" yaml:"disable_embedded_res"`

	Scripting      Scripting      `mapstructure:"scripting" json:"scripting" yaml:"scripting"`
	ScriptingCache ScriptingCache `mapstructure:"scripting_cache" json:"scripting_cache" yaml:"scripting_cache"`
}

// Default returns the built-in defaults, applied before any config file or
// flag overrides them.
func Default() *Options {
	return &Options{
		Port:            8080,
		WWWRoot:         ".",
		LogLevelConsole: "info",
		Deflate:         6,
		Scripting: Scripting{
			Enabled:        true,
			SessionTimeout: 1800,
		},
	}
}

// Validate checks Options against its struct tags.
func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("webconfig: invalid configuration: %w", err)
	}
	return nil
}

// Clone returns a deep-enough copy of o (no pointer/slice fields exist, so
// a value copy suffices).
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// Merge overlays any non-zero field of other onto o, letting CLI flags win
// over a loaded config file which in turn wins over Default().
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}
	if other.Port != 0 {
		o.Port = other.Port
	}
	if other.WWWRoot != "" {
		o.WWWRoot = other.WWWRoot
	}
	if other.LogFile != "" {
		o.LogFile = other.LogFile
	}
	if other.LogLevelFile != "" {
		o.LogLevelFile = other.LogLevelFile
	}
	if other.LogLevelConsole != "" {
		o.LogLevelConsole = other.LogLevelConsole
	}
	if other.IPv6 {
		o.IPv6 = other.IPv6
	}
	if other.Deflate != 0 {
		o.Deflate = other.Deflate
	}
	if other.DisableEmbeddedRes {
		o.DisableEmbeddedRes = other.DisableEmbeddedRes
	}
	if other.Scripting.SessionTimeout != 0 {
		o.Scripting.SessionTimeout = other.Scripting.SessionTimeout
	}
}

// Load reads path (an INI file) into a fresh Options built on top of
// Default().
func Load(path string) (*Options, error) {
	o := Default()

	if path == "" {
		return o, nil
	}

	v := viper.New()
	v.SetConfigType("ini")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("webconfig: reading %s: %w", path, err)
	}
	if err := v.Unmarshal(o); err != nil {
		return nil, fmt.Errorf("webconfig: parsing %s: %w", path, err)
	}

	return o, nil
}
