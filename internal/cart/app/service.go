package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

const tracerName = "github.com/dwikikusuma/storefront/internal/cart/app"

var ErrNoUser = errors.New("user id required")

type Options struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	// RemoteTimeout bounds each background call. Zero leaves it to the transport.
	RemoteTimeout time.Duration

	// MergeOnLogin keeps anonymous items when a user signs in instead of
	// replacing them with the remote cart.
	MergeOnLogin bool

	// OnSyncError observes every failed background sync.
	OnSyncError func(*SyncError)

	// Retryable classifies sync failures as transient. Nil treats none as transient.
	Retryable func(error) bool
}

// Service is the cart of one running storefront session. Every mutation is
// applied to the local ledger before it returns; remote persistence follows
// in the background on a serial queue and is best effort.
type Service struct {
	store   RecordStore
	log     *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration
	merge   bool
	onError func(*SyncError)
	retry   func(error) bool

	mu      sync.Mutex
	ledger  domain.Ledger
	view    domain.View
	index   *RemoteIndex
	userID  string
	epoch   uint64
	loading int

	// seq orders mutations made while a load is in flight; touched and
	// clearedAt record the last such change per product and for the whole cart.
	seq       uint64
	touched   map[string]uint64
	clearedAt uint64

	queue serialQueue
}

type session struct {
	userID string
	epoch  uint64
}

func NewService(store RecordStore, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	s := &Service{
		store:   store,
		log:     log.With("component", "cart"),
		tracer:  tracer,
		timeout: opts.RemoteTimeout,
		merge:   opts.MergeOnLogin,
		onError: opts.OnSyncError,
		retry:   opts.Retryable,
		index:   NewRemoteIndex(),
	}
	s.applyLocked(domain.Replace(nil))
	return s
}

// AddToCart adds quantity of product to the local cart and schedules the remote
// write. For an anonymous cart the returned Sync is already settled with a nil
// error, since nothing is written remotely.
func (s *Service) AddToCart(product domain.Product, quantity int) *Sync {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(domain.Upsert(product, quantity))
	s.touchLocked(product.ID)
	return s.scheduleLocked("add", product.ID, s.reconcile(product.ID))
}

func (s *Service) RemoveFromCart(productID string) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(domain.Remove(productID))
	s.touchLocked(productID)
	return s.scheduleLocked("remove", productID, s.reconcile(productID))
}

func (s *Service) UpdateQuantity(productID string, quantity int) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(domain.SetQuantity(productID, quantity))
	s.touchLocked(productID)
	return s.scheduleLocked("update", productID, s.reconcile(productID))
}

// ClearCart empties the cart and, for a signed-in user, deletes every remote record.
func (s *Service) ClearCart() *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(domain.Replace(nil))
	if s.loading > 0 {
		s.seq++
		s.clearedAt = s.seq
	}
	return s.scheduleLocked("clear", "", s.clearRemote)
}

// ResetLocal empties the cart and forgets the signed-in user without touching
// the remote store. Queued remote work for the old session is dropped.
func (s *Service) ResetLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.epoch++
	s.index.Clear()
	s.applyLocked(domain.Replace(nil))
}

// LoadForUser makes userID the cart owner and replaces the ledger with the
// remote cart. On failure the ledger is left as it was.
func (s *Service) LoadForUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNoUser
	}
	return s.beginLoad(userID)(ctx)
}

// beginLoad switches the cart owner right away and returns the step that
// fetches the remote cart. The returned func must be called exactly once.
// The fetch runs on the remote queue so it is ordered with reconcile work.
func (s *Service) beginLoad(userID string) func(ctx context.Context) error {
	s.mu.Lock()
	mergeLocal := s.merge && s.userID == ""
	if s.userID != userID {
		s.userID = userID
		s.epoch++
		s.index.Clear()
	}
	sess := s.sessionLocked()
	since := s.seq
	s.loading++
	s.mu.Unlock()

	return func(ctx context.Context) error {
		done := newSync()
		s.queue.push(func() {
			done.finish(s.load(ctx, sess, since, mergeLocal))
		})
		return done.Wait(ctx)
	}
}

func (s *Service) load(ctx context.Context, sess session, since uint64, mergeLocal bool) error {
	defer func() {
		s.mu.Lock()
		s.loading--
		if s.loading == 0 {
			s.touched = nil
		}
		s.mu.Unlock()
	}()

	s.mu.Lock()
	current := s.currentLocked(sess)
	s.mu.Unlock()
	if !current {
		return ErrSessionChanged
	}

	records, err := s.store.ListRecords(ctx, sess.userID)
	if err != nil {
		s.log.Warn("cart load failed", slog.String("user_id", sess.userID), slog.Any("err", err))
		return fmt.Errorf("load cart for user %s: %w", sess.userID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(sess) {
		return ErrSessionChanged
	}
	s.replaceFromRecordsLocked(records, mergeLocal, since)
	return nil
}

// replaceFromRecordsLocked installs the fetched records. Products changed
// locally after since keep their local state; their reconcile tasks are
// already queued behind the load.
func (s *Service) replaceFromRecordsLocked(records []domain.Record, mergeLocal bool, since uint64) {
	pairs := make(map[string]string, len(records))
	entries := make([]domain.Entry, 0, len(records))
	for _, r := range records {
		pairs[r.ProductID] = r.ID
		entries = append(entries, r.Entry())
	}
	s.index.Reset(pairs)

	// A clear during the fetch empties the remote cart right after this.
	if s.clearedAt > since {
		entries = nil
	}

	local := s.ledger
	s.applyLocked(domain.Replace(entries))
	if mergeLocal {
		for _, e := range local.Entries() {
			s.applyLocked(domain.Upsert(e.Product, e.Quantity))
			s.scheduleLocked("merge", e.Product.ID, s.reconcile(e.Product.ID))
		}
	}

	var kept int
	for productID, at := range s.touched {
		if at <= since {
			continue
		}
		kept++
		e, ok := local.Entry(productID)
		switch {
		case !ok:
			s.applyLocked(domain.Remove(productID))
		case !mergeLocal:
			s.applyLocked(domain.Remove(productID))
			s.applyLocked(domain.Upsert(e.Product, e.Quantity))
		}
	}
	s.log.Debug("cart loaded",
		slog.String("user_id", s.userID),
		slog.Int("records", len(records)),
		slog.Bool("merged", mergeLocal),
		slog.Int("kept_local", kept),
	)
}

// touchLocked notes a local change to productID made while a load is in flight.
func (s *Service) touchLocked(productID string) {
	if s.loading == 0 {
		return
	}
	if s.touched == nil {
		s.touched = make(map[string]uint64)
	}
	s.seq++
	s.touched[productID] = s.seq
}

func (s *Service) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Contains(productID)
}

func (s *Service) Cart() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Items = append([]domain.Entry(nil), s.view.Items...)
	return v
}

func (s *Service) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// RemoteID reports the remote record id currently known for productID.
func (s *Service) RemoteID(productID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Get(productID)
}

// Flush waits until all remote work queued so far has finished.
func (s *Service) Flush(ctx context.Context) error {
	done := newSync()
	s.queue.push(func() { done.finish(nil) })
	return done.Wait(ctx)
}

func (s *Service) applyLocked(a domain.Action) {
	s.ledger = s.ledger.Apply(a)
	s.view = domain.NewView(s.ledger)
}

func (s *Service) sessionLocked() session {
	return session{userID: s.userID, epoch: s.epoch}
}

func (s *Service) currentLocked(sess session) bool {
	return s.userID == sess.userID && s.epoch == sess.epoch
}

type remoteTask func(ctx context.Context, sess session) error

func (s *Service) scheduleLocked(op, productID string, task remoteTask) *Sync {
	if s.userID == "" {
		return settled(nil)
	}

	sess := s.sessionLocked()
	out := newSync()
	s.queue.push(func() {
		ctx, cancel := s.remoteContext()
		defer cancel()

		ctx, span := s.tracer.Start(ctx, "cart."+op, trace.WithAttributes(
			attribute.String("cart.user_id", sess.userID),
			attribute.String("cart.product_id", productID),
		))
		err := task(ctx, sess)
		if err == nil {
			span.End()
			out.finish(nil)
			return
		}

		syncErr := &SyncError{Op: op, UserID: sess.userID, ProductID: productID, Err: err}
		if !errors.Is(err, ErrSessionChanged) {
			syncErr.Retryable = s.retry != nil && s.retry(err)
			span.SetAttributes(attribute.Bool("cart.retryable", syncErr.Retryable))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.report(syncErr)
		out.finish(syncErr)
	})
	return out
}

func (s *Service) report(err *SyncError) {
	if errors.Is(err, ErrSessionChanged) {
		s.log.Debug("cart sync dropped", slog.String("op", err.Op), slog.String("user_id", err.UserID), slog.String("product_id", err.ProductID))
		return
	}
	s.log.Warn("cart sync failed",
		slog.String("op", err.Op),
		slog.String("user_id", err.UserID),
		slog.String("product_id", err.ProductID),
		slog.Bool("retryable", err.Retryable),
		slog.Any("err", err.Err),
	)
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Service) remoteContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(context.Background(), s.timeout)
	}
	return context.WithCancel(context.Background())
}

// reconcile brings the remote record of one product in line with the ledger
// as it is when the task runs, not when it was queued.
func (s *Service) reconcile(productID string) remoteTask {
	return func(ctx context.Context, sess session) error {
		s.mu.Lock()
		if !s.currentLocked(sess) {
			s.mu.Unlock()
			return ErrSessionChanged
		}
		entry, wanted := s.ledger.Entry(productID)
		recordID, indexed := s.index.Get(productID)
		s.mu.Unlock()

		switch {
		case wanted && !indexed:
			rec, err := s.store.CreateRecord(ctx, sess.userID, entry.Product, entry.Quantity)
			if err != nil {
				return fmt.Errorf("create record: %w", err)
			}
			s.mu.Lock()
			if s.currentLocked(sess) {
				s.index.Set(productID, rec.ID)
			}
			s.mu.Unlock()

		case wanted && indexed:
			if _, err := s.store.UpdateRecordQuantity(ctx, recordID, entry.Quantity); err != nil {
				if errors.Is(err, ErrRecordNotFound) {
					s.forget(sess, productID, recordID)
				}
				return fmt.Errorf("update record %s: %w", recordID, err)
			}

		case !wanted && indexed:
			if err := s.store.DeleteRecord(ctx, recordID); err != nil && !errors.Is(err, ErrRecordNotFound) {
				return fmt.Errorf("delete record %s: %w", recordID, err)
			}
			s.forget(sess, productID, recordID)
		}
		return nil
	}
}

func (s *Service) forget(sess session, productID, recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(sess) {
		return
	}
	if id, ok := s.index.Get(productID); ok && id == recordID {
		s.index.Delete(productID)
	}
}

func (s *Service) clearRemote(ctx context.Context, sess session) error {
	s.mu.Lock()
	current := s.currentLocked(sess)
	s.mu.Unlock()
	if !current {
		return ErrSessionChanged
	}

	if err := s.store.DeleteAllRecords(ctx, sess.userID); err != nil {
		return fmt.Errorf("delete all records: %w", err)
	}

	s.mu.Lock()
	if s.currentLocked(sess) {
		s.index.Clear()
	}
	s.mu.Unlock()
	return nil
}
