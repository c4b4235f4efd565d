// Package cliutil holds the setup shared by the rs-* command line tools.
package cliutil

import (
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/risksense-community/RSClientGo"
	"github.com/risksense-community/RSClientGo/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

type Options struct {
	ConfigPath string
	LogLevel   string
}

// AddFlags registers the flags every tool accepts
func AddFlags(fs *pflag.FlagSet) *Options {
	opts := &Options{}
	fs.StringVarP(&opts.ConfigPath, "config", "c", "config.toml", "path to the TOML configuration file")
	fs.StringVar(&opts.LogLevel, "log-level", "", "override the log_level from the configuration")
	return opts
}

func NewLogger(level string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	logger.SetLevel(lvl)
	myformatter := &easy.Formatter{}
	myformatter.TimestampFormat = "2006-01-02 15:04:05.000"
	myformatter.LogFormat = "[%lvl%][%time%] %msg%\n"
	logger.SetFormatter(myformatter)
	logger.SetOutput(out)
	return logger, nil
}

// Setup loads the configuration named by the flags and builds the logger from it
func (o *Options) Setup() (*config.Config, *logrus.Logger, error) {
	path := o.ConfigPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config.toml" {
		path = "" // the default file is optional, RS_* variables may carry everything
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	logger, err := NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// NewClient connects to the configured platform and verifies the client id
func NewClient(cfg *config.Config, logger *logrus.Logger) (*RSClientGo.RSClient, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout.Duration}

	client, err := RSClientGo.NewAPIKeyClient(httpClient, cfg.PlatformURL, cfg.APIKey, cfg.ClientID, logger)
	if err != nil {
		return nil, errors.Wrap(err, "error creating client")
	}
	client.SetRetries(cfg.Retries, cfg.RetryDelay)
	logger.Infof("Connected with %v", client.String())
	return client, nil
}

// Subject maps the configured subject to the SDK type
func Subject(cfg *config.Config) RSClientGo.Subject {
	return RSClientGo.Subject(cfg.Subject)
}
