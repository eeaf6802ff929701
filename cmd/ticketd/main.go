// Command ticketd runs the ticket-tracking REST service.
//
// The composition root builds every component explicitly: config is
// loaded once from the environment, the signing key and token TTL are
// passed into the token service and never touched again, and the
// authentication filter is wired into the request pipeline ahead of
// every handler.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgiroux/ticketd/auth"
	"github.com/mgiroux/ticketd/config"
	"github.com/mgiroux/ticketd/rest"
	"github.com/mgiroux/ticketd/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ticketd: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	users := store.NewUsers(db)
	tickets := store.NewTickets(db)

	provider := auth.NewUserProvider(users)
	tokens := auth.NewTokenService([]byte(cfg.SigningKey), cfg.TokenTTL, cfg.Issuer, nil)
	auther := auth.NewAuthenticator(provider, tokens)

	app := rest.New(rest.Deps{
		Auther:  auther,
		Users:   users,
		Tickets: tickets,
		HashPassword: func(password string) (string, error) {
			return auth.HashPasswordCost(password, cfg.BcryptCost)
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	log.Printf("ticketd listening on %s", cfg.HTTPAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
