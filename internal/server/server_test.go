package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pratocheio/internal/uploads"
	"pratocheio/internal/utils"
	"pratocheio/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*types.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*types.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *types.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user.ID = utils.NumericID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) User(_ context.Context, userID string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UserByEmail(_ context.Context, email string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, userID string, update *types.UserUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return false, nil
	}

	if update.Nome != nil {
		user.Nome = *update.Nome
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.SenhaHash != nil {
		user.SenhaHash = *update.SenhaHash
	}
	if update.Tipo != nil {
		user.Tipo = *update.Tipo
	}
	if update.BairroOuDistrito != nil {
		user.BairroOuDistrito = *update.BairroOuDistrito
	}
	if update.Cidade != nil {
		user.Cidade = *update.Cidade
	}
	user.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeUserStore) Delete(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userID]; !ok {
		return false, nil
	}
	delete(f.users, userID)
	return true, nil
}

type fakeDonationStore struct {
	mu        sync.Mutex
	donations map[string]*types.Donation
}

func newFakeDonationStore() *fakeDonationStore {
	return &fakeDonationStore{donations: make(map[string]*types.Donation)}
}

func (f *fakeDonationStore) Create(_ context.Context, donation *types.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation.ID = utils.NumericID()
	now := time.Now()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	stored := *donation
	f.donations[donation.ID] = &stored
	return nil
}

func (f *fakeDonationStore) Donation(_ context.Context, donationID string) (*types.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	copied := *donation
	return &copied, nil
}

func (f *fakeDonationStore) Donations(_ context.Context) ([]*types.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Donation, 0, len(f.donations))
	for _, donation := range f.donations {
		copied := *donation
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeDonationStore) DonationsByUser(_ context.Context, userID string) ([]*types.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Donation, 0)
	for _, donation := range f.donations {
		if donation.UserID == userID {
			copied := *donation
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeDonationStore) Update(_ context.Context, donationID string, update *types.DonationUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation, ok := f.donations[donationID]
	if !ok {
		return false, nil
	}

	if update.NomeAlimento != nil {
		donation.NomeAlimento = *update.NomeAlimento
	}
	if update.Validade != nil {
		donation.Validade = *update.Validade
	}
	if update.Descricao != nil {
		donation.Descricao = *update.Descricao
	}
	if update.BairroOuDistrito != nil {
		donation.BairroOuDistrito = *update.BairroOuDistrito
	}
	if update.HorarioPreferido != nil {
		donation.HorarioPreferido = *update.HorarioPreferido
	}
	if update.Termos != nil {
		donation.Termos = *update.Termos
	}
	if update.Imagens != nil {
		donation.ImagensURLs = *update.Imagens
	}
	donation.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeDonationStore) Delete(_ context.Context, donationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.donations[donationID]; !ok {
		return false, nil
	}
	delete(f.donations, donationID)
	return true, nil
}

type testEnv struct {
	service   *Service
	users     *fakeUserStore
	donations *fakeDonationStore
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:           8080,
		UploadsDir:           t.TempDir(),
		MaxImagesPerDonation: 5,
		MaxUploadBytes:       32 << 20,
	}

	uploadStore, err := uploads.NewStore(config.UploadsDir, logger)
	require.NoError(t, err)

	users := newFakeUserStore()
	donations := newFakeDonationStore()

	service, err := New(config, logger, users, donations, uploadStore)
	require.NoError(t, err)

	return &testEnv{
		service:   service,
		users:     users,
		donations: donations,
		uploadDir: config.UploadsDir,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.service.server.Handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form request; every file lands under the
// imagens field.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile(imagesField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
