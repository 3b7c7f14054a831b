package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	flagConfigFile string
	log            zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ccr",
	Short: "Return codes control component node",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := zerolog.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		log = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		return nil
	},
	SilenceUsage: true,
}

var RootCmd = rootCmd

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "optional YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("datadir", "data", "directory of the node database")
	rootCmd.PersistentFlags().Uint8("node-id", 0, "id of this node, 1 to 4")
	rootCmd.PersistentFlags().Int("max-options", 0, "maximum number of selectable options of an election event")
	bindFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(inspectCommandCmd)
	rootCmd.AddCommand(keygenCmd)

	cobra.OnInitialize(initConfig)
}

// bindFlags binds the persistent and local flags of cmd to their viper keys.
func bindFlags(cmd *cobra.Command) {
	for _, flags := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.Flags()} {
		if err := viper.BindPFlags(flags); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	viper.SetEnvPrefix("CCR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if flagConfigFile == "" {
		return
	}
	viper.SetConfigFile(flagConfigFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "could not read config file %s: %v\n", flagConfigFile, err)
		os.Exit(1)
	}
}
