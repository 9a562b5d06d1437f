package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Bridge follows the signed-in identity and swaps the cart accordingly:
// sign-in loads the user's remote cart, sign-out or a user switch resets the
// local cart without clearing anything remotely.
type Bridge struct {
	cart        *Service
	identity    IdentitySource
	log         *slog.Logger
	loadTimeout time.Duration

	mu          sync.Mutex
	unsubscribe func()
	inflight    sync.WaitGroup
}

func NewBridge(cart *Service, identity IdentitySource, log *slog.Logger, loadTimeout time.Duration) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		cart:        cart,
		identity:    identity,
		log:         log.With("component", "cart_session"),
		loadTimeout: loadTimeout,
	}
}

// Start subscribes to identity changes and syncs the cart with the identity
// that is current right now.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.unsubscribe != nil {
		b.mu.Unlock()
		return nil
	}
	b.unsubscribe = b.identity.Subscribe(b.onChange)
	b.mu.Unlock()

	if userID := b.identity.CurrentUserID(); userID != "" {
		return b.load(ctx, userID)
	}
	return nil
}

func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	b.inflight.Wait()
}

// onChange runs on the notifier's goroutine. The local reset happens before it
// returns; the load of the next user's cart runs in the background.
func (b *Bridge) onChange(prev, next string) {
	if prev == next {
		return
	}
	if prev != "" {
		b.cart.ResetLocal()
		b.log.Info("cart reset for sign-out", slog.String("user_id", prev))
	}
	if next == "" {
		return
	}

	fetch := b.cart.beginLoad(next)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		ctx := context.Background()
		if b.loadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.loadTimeout)
			defer cancel()
		}
		b.logLoad(next, fetch(ctx))
	}()
}

func (b *Bridge) load(ctx context.Context, userID string) error {
	err := b.cart.LoadForUser(ctx, userID)
	b.logLoad(userID, err)
	return err
}

func (b *Bridge) logLoad(userID string, err error) {
	switch {
	case err == nil:
		b.log.Info("cart loaded for sign-in", slog.String("user_id", userID))
	case errors.Is(err, ErrSessionChanged):
		b.log.Debug("cart load superseded", slog.String("user_id", userID))
	default:
		b.log.Warn("cart load failed, keeping local cart", slog.String("user_id", userID), slog.Any("err", err))
	}
}

// Wait blocks until background loads started by identity changes have finished.
func (b *Bridge) Wait() {
	b.inflight.Wait()
}
