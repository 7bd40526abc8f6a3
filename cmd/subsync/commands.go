package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/dmitrymomot/subsync"
	"github.com/dmitrymomot/subsync/internal/devbackend"
	"github.com/dmitrymomot/subsync/pkg/client"
	"github.com/dmitrymomot/subsync/pkg/cookie"
	"github.com/dmitrymomot/subsync/pkg/httpserver"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/redis"
	"github.com/dmitrymomot/subsync/pkg/view"
	"github.com/dmitrymomot/subsync/pkg/view/textview"
	"github.com/dmitrymomot/subsync/pkg/view/webview"
)

type command struct {
	cfg    subsync.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (c command) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// who selects the identity for the terminal commands. Without flags the
// ID_TOKEN variable is used, and without that the client stays anonymous.
type who struct {
	token   string
	devUser string
}

func (w *who) register(fs *flag.FlagSet) {
	fs.StringVar(&w.token, "token", "", "raw id `TOKEN` to sign in with (default $ID_TOKEN)")
	fs.StringVar(&w.devUser, "dev-user", "", "sign in as development `USER` with a token the dev backend accepts")
}

func (w *who) identity(cfg subsync.Config) (*identity.Identity, error) {
	switch {
	case w.devUser != "":
		return identity.NewDevIssuer([]byte(cfg.Dev.Secret), 0).Identity(w.devUser, w.devUser, ""), nil
	case w.token != "":
		return identity.FromIDToken(w.token)
	}
	return nil, nil
}

func (c command) terminal(ctx context.Context, name string, args []string, opts ...textview.Option) (*subsync.App, *textview.Terminal, func(), error) {
	fs := c.flags(name)
	var id who
	id.register(fs)
	inverse := fs.Bool("inverse", false, "invert QR codes for light terminals")
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	if *inverse {
		opts = append(opts, textview.WithInverseQR())
	}

	ident, err := id.identity(c.cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	term := textview.New(c.stdout, opts...)
	app, err := subsync.New(c.cfg, term, subsync.WithLogger(c.log), subsync.WithIdentity(ident))
	if err != nil {
		return nil, nil, nil, err
	}
	stop := app.Start(ctx)
	app.Client.Wait()
	return app, term, stop, nil
}

func (c command) status(ctx context.Context, args []string) error {
	_, term, stop, err := c.terminal(ctx, "status", args)
	if err != nil {
		return err
	}
	defer stop()
	return term.Flush()
}

func (c command) subscribe(ctx context.Context, args []string) error {
	app, _, stop, err := c.terminal(ctx, "subscribe", args)
	if err != nil {
		return err
	}
	defer stop()

	err = app.Client.Purchase(ctx)
	if errors.Is(err, client.ErrAlreadySubscribed) {
		fmt.Fprintln(c.stdout, "Already subscribed.")
		return nil
	}
	return err
}

func (c command) serve(ctx context.Context, args []string) error {
	fs := c.flags("serve")
	devAuth := fs.Bool("dev-auth", false, "sign browsers in as a development user instead of Google")
	devUser := fs.String("dev-user", "dev", "development `USER` for -dev-auth")
	publicURL := fs.String("public-url", "", "`URL` browsers reach this server at (default derived from HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *publicURL == "" {
		*publicURL = localURL(c.cfg.HTTP.Addr)
	}

	hub := webview.NewHub(view.DefaultPresenter().Present(view.State{}), webview.WithLogger(c.log))
	app, err := subsync.New(c.cfg, hub, subsync.WithLogger(c.log))
	if err != nil {
		return err
	}

	var auth subsync.Authenticator
	switch {
	case *devAuth:
		auth = subsync.DevAuthenticator{
			Issuer:   identity.NewDevIssuer([]byte(c.cfg.Dev.Secret), 0),
			Callback: strings.TrimSuffix(*publicURL, "/") + subsync.CallbackPath,
			Subject:  *devUser,
			Name:     *devUser,
		}
	case c.cfg.Google.Enabled():
		auth = identity.NewGoogleProvider(c.cfg.Google)
	}

	var webOpts []subsync.WebOption
	if auth != nil {
		cookies, err := c.cookies()
		if err != nil {
			return err
		}
		webOpts = append(webOpts, subsync.WithAuthenticator(auth, cookies))
	} else {
		c.log.WarnContext(ctx, "sign-in disabled: set GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET or pass -dev-auth")
	}

	stop := app.Start(ctx)
	defer func() {
		stop()
		app.Client.Wait()
	}()
	context.AfterFunc(ctx, hub.Close)

	srv := httpserver.NewFromConfig(c.cfg.HTTP, httpserver.WithLogger(c.log))
	return srv.Run(ctx, app.Handler(hub, webOpts...))
}

// cookies returns the manager for the OAuth state cookie. Without
// configured secrets a random one is used, so states do not survive a
// restart.
func (c command) cookies() (*cookie.Manager, error) {
	if strings.TrimSpace(c.cfg.Cookie.Secrets) != "" {
		return cookie.NewFromConfig(c.cfg.Cookie)
	}
	c.log.Warn("COOKIE_SECRETS is not set, using a random secret")
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return cookie.New([]string{hex.EncodeToString(buf)}, cookie.WithSecure(c.cfg.Cookie.Secure))
}

func (c command) devbackend(ctx context.Context, args []string) error {
	fs := c.flags("devbackend")
	addr := fs.String("addr", "127.0.0.1:8000", "listen `ADDR`")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []devbackend.Option{devbackend.WithLogger(c.log)}
	if c.cfg.Redis.Enabled() {
		rdb, err := redis.Connect(ctx, c.cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts,
			devbackend.WithStore(devbackend.NewRedisStore(rdb, "subsync:")),
			devbackend.WithHealthChecks(redis.Healthcheck(rdb)),
		)
		c.log.InfoContext(ctx, "dev backend records are kept in redis")
	}

	issuer := identity.NewDevIssuer([]byte(c.cfg.Dev.Secret), 0)
	backend := devbackend.New(issuer, c.cfg.Dev, opts...)

	srv := httpserver.NewFromConfig(c.cfg.HTTP,
		httpserver.WithAddr(*addr),
		httpserver.WithLogger(c.log.With(logger.Component("devbackend"))),
	)
	return srv.Run(ctx, backend.Router())
}

func (c command) token(args []string) error {
	fs := c.flags("token")
	sub := fs.String("sub", "dev", "subject")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	ttl := fs.Duration("ttl", time.Hour, "lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := identity.NewDevIssuer([]byte(c.cfg.Dev.Secret), *ttl).Issue(*sub, *name, *email)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, token)
	return err
}

// localURL turns a listen address such as "127.0.0.1:8080" into a browser
// URL. Loopback and wildcard hosts become localhost, the host the OAuth
// redirect defaults to, so the state cookie is sent back to the callback.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "127.0.0.1", "::1", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
