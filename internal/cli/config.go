package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tekoetch/investorscout/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Show prints the configuration after defaults are applied, so keys
missing from the file are listed with the values in effect.`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteDefault(configPath)
	if err != nil {
		if path != "" {
			fmt.Printf("Config file already exists at %s\n", path)
			fmt.Println("Use 'scout config show' to view current configuration")
			return nil
		}
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	fmt.Printf("Created config file at %s\n", path)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set BRAVE_API_KEY, or GOOGLE_API_KEY and [search.google] engine_id")
	fmt.Println("     (DuckDuckGo needs no key; add \"mock\" to [search] providers to try it offline)")
	fmt.Println("  2. Adjust [discovery] queries and the [region] keywords for your market")
	fmt.Println("  3. Run 'scout run' to discover, verify and grade candidates")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	expanded, _ := config.ExpandPath(configPath)
	if _, statErr := os.Stat(expanded); statErr != nil {
		fmt.Printf("# No config file at %s, showing defaults\n\n", expanded)
	} else {
		fmt.Printf("# Config file: %s\n\n", expanded)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	expanded, err := config.ExpandPath(configPath)
	if err != nil {
		return err
	}
	fmt.Println(expanded)
	return nil
}
