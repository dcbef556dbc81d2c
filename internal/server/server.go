package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pratocheio/internal/uploads"
	"pratocheio/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// UserStore and DonationStore are the persistence surfaces the handlers
// consume; internal/store provides the Postgres implementations.
type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
	Update(ctx context.Context, userID string, update *types.UserUpdate) (bool, error)
	Delete(ctx context.Context, userID string) (bool, error)
}

type DonationStore interface {
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	Donations(ctx context.Context) ([]*types.Donation, error)
	DonationsByUser(ctx context.Context, userID string) ([]*types.Donation, error)
	Create(ctx context.Context, donation *types.Donation) error
	Update(ctx context.Context, donationID string, update *types.DonationUpdate) (bool, error)
	Delete(ctx context.Context, donationID string) (bool, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	users     UserStore
	donations DonationStore
	uploads   *uploads.Store

	// Serializes image reconciliation per donation id; see lock().
	donationLocks keyedMutex

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	users UserStore,
	donations DonationStore,
	uploadStore *uploads.Store,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:    logger,
		config:    config,
		users:     users,
		donations: donations,
		uploads:   uploadStore,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.RecoverMiddleware)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/users", s.handleCreateUser, http.MethodPost)
	r.HandleFunc("/users/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/users/:id", s.handleUser, http.MethodGet)
	r.HandleFunc("/users/:id/completo", s.handleUserComplete, http.MethodGet)
	r.HandleFunc("/users/:id", s.handleUpdateUser, http.MethodPut)
	r.HandleFunc("/users/:id", s.handleDeleteUser, http.MethodDelete)

	r.HandleFunc("/donations", s.handleCreateDonation, http.MethodPost)
	r.HandleFunc("/donations", s.handleDonations, http.MethodGet)
	// Registered before /donations/:id so "user" is not taken as an id.
	r.HandleFunc("/donations/user/:userId", s.handleDonationsByUser, http.MethodGet)
	r.HandleFunc("/donations/:id", s.handleDonation, http.MethodGet)
	r.HandleFunc("/donations/:id", s.handleUpdateDonation, http.MethodPut)
	r.HandleFunc("/donations/:id", s.handleDeleteDonation, http.MethodDelete)
	r.HandleFunc("/donations/:id/gallery", s.handleGallery, http.MethodGet)

	r.Handle("/uploads/...",
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads.Dir()))),
		http.MethodGet)
}

// baseURL yields the prefix image URLs are built from: the configured
// public base when set, otherwise the incoming request's scheme and host.
func (s *Service) baseURL(r *http.Request) string {
	if s.config.PublicBaseURL != "" {
		return s.config.PublicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// keyedMutex hands out one mutex per donation id so concurrent updates
// to the same donation's image set cannot interleave their
// read-reconcile-write cycles. Entries are never evicted; the id space
// is a million values at most.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = new(sync.Mutex)
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
