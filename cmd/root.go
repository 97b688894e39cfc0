/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cmd holds the keldris command line: api, migrate, worker and version.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "keldris",
	Short:         "Keldris backup dashboard API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return logger.Init()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $CONFIG_PATH or ./config.yaml) // 配置文件路径")
}

// loadConfig reads the explicit --config path, then CONFIG_PATH, then
// ./config.yaml. Without any file the built-in defaults are kept.
func loadConfig() error {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return config.Load(path)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
