package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/server"
	"github.com/example/photomark/internal/store"
)

type serveCmd struct {
	listen    string
	storeType string
	storePath string
	publicURL string
	origins   string
	ttl       time.Duration
	*root
	fs *flag.FlagSet
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r.subcommand("serve"), fs: fs}
	fs.Usage = usageFunc(s)
	cfg := r.config.Server
	fs.StringVar(&s.listen, "listen", cfg.Listen, "address to listen on")
	fs.StringVar(&s.storeType, "store", r.config.Store.Type, "where saved images are kept ("+strings.Join(store.Types, ", ")+")")
	fs.StringVar(&s.storePath, "store-path", r.config.Store.Path, "directory or database file for the file and sqlite stores")
	fs.StringVar(&s.publicURL, "public-url", cfg.PublicURL, "prefix for export links handed to clients")
	fs.StringVar(&s.origins, "allowed-origins", strings.Join(cfg.AllowedOrigins, ","), "comma separated origins allowed to call the API")
	fs.DurationVar(&s.ttl, "session-ttl", cfg.SessionTTL, "cancel sessions idle for longer than this, 0 keeps them")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: s}
	}
	if s.listen == "" {
		return nil, fmt.Errorf("-listen cannot be empty")
	}
	if s.ttl < 0 {
		return nil, fmt.Errorf("-session-ttl cannot be negative")
	}
	return s, nil
}

func (s *serveCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stCfg := s.config.Store
	stCfg.Type = s.storeType
	stCfg.Path = s.storePath
	st, err := store.Open(ctx, stCfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			s.log.WithError(err).Warn("close store")
		}
	}()

	opts, err := s.sessionOptions()
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Session:        opts,
		Store:          st,
		Notifier:       s.notifier,
		AllowedOrigins: splitList(s.origins),
		PublicURL:      s.publicURL,
		SessionTTL:     s.ttl,
		Log:            s.log,
	})
	defer srv.Close()

	s.log.WithFields(logrus.Fields{"listen": s.listen, "store": stCfg.Type}).Info("serving")
	return srv.ListenAndServe(ctx, s.listen)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
