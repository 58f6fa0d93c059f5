package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/molscope-cli/internal/config"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set MolScope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_url: %s\n", cfg.APIURL)
		fmt.Printf("model_service_url: %s\n", cfg.ModelServiceURL)
		fmt.Printf("default_model: %s\n", cfg.DefaultModel)
		if cfg.HTTPTimeoutSec > 0 {
			fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		} else {
			fmt.Println("http_timeout_sec: 0 (no timeout)")
		}
		fmt.Printf("runs_dir: %s\n", cfg.RunsDir)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("theme: %s\n", cfg.Theme)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		switch key {
		case "api_url":
			c.APIURL = val
		case "model_service_url":
			c.ModelServiceURL = val
		case "default_model":
			m, err := service.ParseModelChoice(val)
			if err != nil {
				return err
			}
			c.DefaultModel = string(m)
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "runs_dir":
			c.RunsDir = val
		case "listen_addr":
			c.ListenAddr = val
		case "theme":
			switch strings.ToLower(val) {
			case "auto", "dark", "light", "notty":
				c.Theme = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid theme: %s (use auto, dark, light or notty)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		path, err := cfgpkg.Save(c, cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Saved config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
