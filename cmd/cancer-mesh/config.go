package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cancer-mesh configuration",
		Long:  "Show, get, or set configuration values. Config is stored in config.yaml.",
		Example: `  cancer-mesh config                       # show all config
  cancer-mesh config set mesh.prefix C04   # extract the full neoplasm branch
  cancer-mesh config get ncbi.tax_id       # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(opts)
		},
	}

	cmd.AddCommand(newConfigSetCmd(opts))
	cmd.AddCommand(newConfigGetCmd(opts))

	return cmd
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(opts, args[0], args[1])
		},
	}
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(opts, args[0])
		},
	}
}

// configFile resolves the config file path, defaulting to ./config.yaml.
func configFile(opts *rootOptions) string {
	if opts.cfgFile != "" {
		return opts.cfgFile
	}
	return "config.yaml"
}

// openViper loads the config file into a fresh viper instance. A missing
// file is fine for show/set: defaults and new keys still work.
func openViper(opts *rootOptions) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configFile(opts))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func runConfigShow(opts *rootOptions) error {
	v, err := openViper(opts)
	if err != nil {
		return err
	}

	settings := v.AllSettings()
	if len(settings) == 0 {
		fmt.Printf("# No configuration set. Config file: %s\n", configFile(opts))
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(opts *rootOptions, key, value string) error {
	v, err := openViper(opts)
	if err != nil {
		return err
	}

	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		v.Set(key, true)
	case "false", "no", "off":
		v.Set(key, false)
	default:
		v.Set(key, value)
	}

	cfgFile := configFile(opts)
	if err := v.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(opts *rootOptions, key string) error {
	v, err := openViper(opts)
	if err != nil {
		return err
	}

	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
