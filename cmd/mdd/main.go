package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"mdd-forum/internal/client/app"
	"mdd-forum/internal/client/pages"
	"mdd-forum/internal/client/session"
	"mdd-forum/internal/config"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mdd: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadClient(flags)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Storage: session.NewFileStorage(cfg.SessionFile),
		Notifier: pages.NotifierFunc(func(message string) {
			fmt.Fprintf(os.Stdout, "» %s\n", message)
		}),
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("setup client: %v", err)
	}

	cli := &cli{app: a, flags: flags, out: os.Stdout, in: os.Stdin}
	err = cli.run(ctx, flags.Args())
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdd: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("mdd", pflag.ContinueOnError)
	flags.String("base-url", "", "API base URL (env MDD_BASE_URL)")
	flags.String("session-file", "", "where the session token is kept (env MDD_SESSION_FILE)")
	flags.Duration("timeout", 0, "HTTP timeout (env MDD_TIMEOUT)")
	flags.String("log-level", "", "log level (env MDD_LOG_LEVEL)")

	flags.String("sort", "desc", "feed order: asc or desc")
	flags.Bool("toggle", false, "flip the feed order once loaded")
	flags.Int64("topic", 0, "topic id for create-post")
	flags.String("title", "", "article title")
	flags.String("content", "", "article content")
	flags.String("username", "", "username")
	flags.String("email", "", "email address")
	flags.String("password", "", "password (prompted when omitted)")

	flags.Usage = func() {
		usage(os.Stderr)
		flags.PrintDefaults()
	}
	return flags
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: mdd [flags] <command> [args]

commands:
  register                         create an account (--username --email --password)
  login <identifier>               log in with email or username (--password)
  logout                           end the session
  status                           show the session state
  posts [--sort asc|desc] [--toggle]
  post <id>                        show an article and its comments
  comment <postId> <text>          comment an article
  create-post --topic --title --content
  topics                           list topics
  subscribe <topicId>
  unsubscribe <topicId>
  me                               show the profile and subscriptions
  me-update [--username] [--email] [--password]

`)
}
