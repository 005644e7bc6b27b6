package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edulabs-io/planctl/internal/utils"
	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/plan"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	        _                  _   _
	  _ __ | | __ _ _ __   ___| |_| |
	 | '_ \| |/ _' | '_ \ / __| __| |
	 | |_) | | (_| | | | | (__| |_| |
	 | .__/|_|\__,_|_| |_|\___|\__|_|
	 |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Compose credit recharge plans from the content catalogs.",
	Long: LOGO + `planctl assembles sellable recharge plans out of books, workbooks and
objective/subjective tests, right from your command line.

Browse the catalogs, build up a draft (scalars plus item selections), then
create the plan or patch an existing one item by item.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.planctl.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("api-url", "", "", "Base URL of the platform API (overrides config)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "Bearer token for the platform API (overrides config)")
	rootCmd.PersistentFlags().StringP("dbpath", "", "planctl.sqlite", "Path to the local draft DB file")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".planctl")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.planctl.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("api.url", "")
	viper.SetDefault("api.token", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// apiConfig resolves the API base URL and token: flags first, then config.
func apiConfig(cmd *cobra.Command) (baseURL, token string, err error) {
	baseURL, _ = cmd.Flags().GetString("api-url")
	if baseURL == "" {
		baseURL = viper.GetString("api.url")
	}
	token, _ = cmd.Flags().GetString("token")
	if token == "" {
		token = viper.GetString("api.token")
	}
	if baseURL == "" {
		return "", "", errors.New("no API base URL configured (set api.url in ~/.planctl.yaml or pass --api-url)")
	}
	if token == "" {
		return "", "", errors.New("no API token configured (set api.token in ~/.planctl.yaml or pass --token)")
	}
	return baseURL, token, nil
}

func newCatalogClient(cmd *cobra.Command) (*catalog.Client, error) {
	baseURL, token, err := apiConfig(cmd)
	if err != nil {
		return nil, err
	}
	return catalog.NewClient(baseURL, token), nil
}

func newPlanClient(cmd *cobra.Command) (*plan.Client, error) {
	baseURL, token, err := apiConfig(cmd)
	if err != nil {
		return nil, err
	}
	return plan.NewClient(baseURL, token), nil
}

func draftDBPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("dbpath")
	if path == "" {
		path = "planctl.sqlite"
	}
	return path
}
