// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/pkg/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(flags *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the logicapps-mcp configuration file.",
		Long: heredoc.Doc(`
			Manage the logicapps-mcp configuration file.

			Values are addressed by dotted paths, for example cache.ttlSeconds, batch.concurrency,
			azure.cloud, azure.defaultSubscriptionId, http.requestsPerSecond, tracing.otlpEndpoint
			and tracing.file. Environment variables override the file when the server starts.
		`),
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show all configuration values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfig(flags)
			if err != nil {
				return err
			}

			return writeJson(cmd.OutOrStdout(), store.cfg.Raw())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Get a configuration value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfig(flags)
			if err != nil {
				return err
			}

			value, has := store.cfg.Get(args[0])
			if !has {
				return fmt.Errorf("no value stored at path '%s'", args[0])
			}

			return writeJson(cmd.OutOrStdout(), value)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a configuration value.",
		Long: heredoc.Doc(`
			Set a configuration value. Values that parse as JSON (numbers, booleans, objects) are stored
			as such; anything else is stored as a string.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfig(flags)
			if err != nil {
				return err
			}

			if err := store.cfg.Set(args[0], parseValue(args[1])); err != nil {
				return fmt.Errorf("setting '%s': %w", args[0], err)
			}

			return store.save()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "unset <path>",
		Short: "Remove a configuration value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfig(flags)
			if err != nil {
				return err
			}

			if err := store.cfg.Unset(args[0]); err != nil {
				return fmt.Errorf("removing '%s': %w", args[0], err)
			}

			return store.save()
		},
	})

	return configCmd
}

type configStore struct {
	path    string
	cfg     config.Config
	manager config.FileConfigManager
}

func openConfig(flags *globalFlags) (*configStore, error) {
	path := flags.configPath
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	manager := config.NewFileConfigManager(config.NewManager())
	cfg, err := manager.LoadOrEmpty(path)
	if err != nil {
		return nil, err
	}

	return &configStore{path: path, cfg: cfg, manager: manager}, nil
}

// save validates the edited configuration before writing it, so the server is never left with a file it rejects.
func (s *configStore) save() error {
	settings, err := config.FromConfig(s.cfg)
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	return s.manager.Save(s.cfg, s.path)
}

func parseValue(text string) any {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value
	}

	return text
}

func writeJson(w io.Writer, value any) error {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(body))
	return err
}
