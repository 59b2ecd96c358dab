package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bertrandmartel/yummy/sp/codec"
	"github.com/bertrandmartel/yummy/sp/config"
	"github.com/bertrandmartel/yummy/sp/middleware"
)

// SecretEnv is read when --secret is not given.
const SecretEnv = "YUMMY_SECRET"

type options struct {
	configPath string
	secret     string
	key        string
	iv         string
	envFile    string

	sessions *middleware.Middleware
}

func (o *options) load() error {
	cfg := config.Defaults()
	if o.configPath != "" {
		parsed, err := config.ParseConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = parsed
	}
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return err
		}
	}
	switch {
	case o.secret != "":
		cfg.Secret = o.secret
	case os.Getenv(SecretEnv) != "":
		cfg.Secret = os.Getenv(SecretEnv)
	}
	if o.key != "" {
		cfg.Key = o.key
	}
	if o.iv != "" {
		cfg.IV = codec.IVStrategy(o.iv)
	}
	sessions, err := middleware.New(cfg)
	if err != nil {
		return err
	}
	o.sessions = sessions
	return nil
}

// NewRootCmd builds the yummyctl command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "yummyctl",
		Short:         "Inspect and forge encrypted session cookies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "JSON session config file")
	root.PersistentFlags().StringVarP(&o.secret, "secret", "s", "", "session secret (default $"+SecretEnv+")")
	root.PersistentFlags().StringVarP(&o.key, "key", "k", "", "cookie name (default connect.sess)")
	root.PersistentFlags().StringVar(&o.iv, "iv", "", "iv strategy: random or derived")
	root.PersistentFlags().StringVar(&o.envFile, "env", "", "dotenv file to load before reading $"+SecretEnv)

	root.AddCommand(decodeCmd(o), encodeCmd(o))
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
