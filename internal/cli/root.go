package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"garageadmin/internal/console"
	"garageadmin/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	cfg     *Config
	store   *console.SessionStore
	client  *console.Client
	format  outputFormat
	in      *bufio.Reader
	cfgPath string
	output  string
	verbose bool
}

// authed returns a client carrying the stored session token.
func (a *app) authed() (*console.Client, error) {
	sess, err := a.store.Require()
	if err != nil {
		return nil, err
	}
	if sess.Offline {
		logger.Warn("using an offline session token; the API will reject it")
	}
	return a.client.WithToken(sess.Token), nil
}

// prompt prints question and reads one line from the command's input.
func (a *app) prompt(cmd *cobra.Command, question string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), question)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) confirm(cmd *cobra.Command, question string) bool {
	answer, err := a.prompt(cmd, question+" [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// NewRootCmd builds the garagectl command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:   "garagectl",
		Short: "garagectl - admin console for the garage platform",
		Long: `garagectl talks to the garage admin API: review pending garages,
manage subscription plans, track expiring subscriptions and view payments.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			logger.SetOutput(cmd.ErrOrStderr(), level)

			format, err := parseFormat(a.output)
			if err != nil {
				return err
			}
			a.format = format

			cfg, err := LoadConfig(a.v, a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.store = console.NewSessionStore(cfg.SessionFile)
			a.client = console.NewClient(cfg.BaseURL, "", cfg.Timeout)
			a.in = bufio.NewReader(cmd.InOrStdin())

			logger.Debug("config loaded", "base_url", cfg.BaseURL, "session_file", cfg.SessionFile)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default ~/.garagectl/config.yaml)")
	pf.String("base-url", "", "admin API base URL")
	pf.StringVarP(&a.output, "output", "o", string(formatTable), "output format: table, yaml or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")
	_ = a.v.BindPFlag("base_url", pf.Lookup("base-url"))

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		garagesCmd(a),
		pendingCmd(a),
		plansCmd(a),
		expiryCmd(a),
		paymentsCmd(a),
		dashboardCmd(a),
	)
	return root
}

// Execute runs the command tree and prints any error to stderr.
func Execute(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return err
	}
	return nil
}
