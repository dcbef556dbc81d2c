package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pratocheio/internal/uploads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donationFields() map[string]string {
	return map[string]string{
		"nome_alimento":      "Arroz",
		"validade":           "2025-12-01",
		"bairro_ou_distrito": "Centro",
		"termos":             "Sim",
		"user_id":            "123456",
	}
}

func createDonation(t *testing.T, env *testEnv, files map[string]string) string {
	t.Helper()

	rec := env.do(multipartRequest(t, http.MethodPost, "/donations", donationFields(), files))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	id, _ := body["id"].(string)
	require.Regexp(t, `^[0-9]{6}$`, id)
	return id
}

func storedImages(env *testEnv, id string) []string {
	return uploads.Split(env.donations.donations[id].ImagensURLs)
}

func TestCreateDonation(t *testing.T) {
	env := newTestEnv(t)

	id := createDonation(t, env, map[string]string{
		"frente.jpg": "foto-frente",
		"verso.jpg":  "foto-verso",
	})

	names := storedImages(env, id)
	require.Len(t, names, 2)
	for _, name := range names {
		_, err := os.Stat(filepath.Join(env.uploadDir, name))
		assert.NoError(t, err, "uploaded file %s must be on disk", name)
	}

	rec := env.do(jsonRequest(t, http.MethodGet, "/donations/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Arroz", body["nome_alimento"])
	assert.Equal(t, "2025-12-01", body["validade"], "validade round-trips at day granularity")
	assert.Equal(t, "Sim", body["termos"])
	assert.Equal(t, "123456", body["user_id"])

	urls, ok := body["imagens_urls"].([]any)
	require.True(t, ok)
	require.Len(t, urls, 2)
	for _, u := range urls {
		assert.Contains(t, u, "http://example.com/uploads/")
	}
}

func TestCreateDonationWithoutImages(t *testing.T) {
	env := newTestEnv(t)

	id := createDonation(t, env, nil)

	assert.Empty(t, storedImages(env, id))

	rec := env.do(jsonRequest(t, http.MethodGet, "/donations/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	urls, ok := body["imagens_urls"].([]any)
	require.True(t, ok)
	assert.Empty(t, urls)
}

func TestCreateDonationTooManyImages(t *testing.T) {
	env := newTestEnv(t)

	files := map[string]string{}
	for i := 0; i < 6; i++ {
		files[fmt.Sprintf("foto%d.jpg", i)] = "x"
	}

	rec := env.do(multipartRequest(t, http.MethodPost, "/donations", donationFields(), files))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.donations.donations)
}

func TestCreateDonationValidationCollectsAllErrors(t *testing.T) {
	env := newTestEnv(t)

	fields := donationFields()
	delete(fields, "nome_alimento")
	fields["validade"] = "01/12/2025"

	rec := env.do(multipartRequest(t, http.MethodPost, "/donations", fields, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(errs), 2, "both violations surface in one response")

	joined := fmt.Sprint(errs)
	assert.Contains(t, joined, "nome_alimento")
	assert.Contains(t, joined, "validade")
}

func TestCreateDonationRejectsUnacceptedTerms(t *testing.T) {
	env := newTestEnv(t)

	fields := donationFields()
	fields["termos"] = "Não"

	rec := env.do(multipartRequest(t, http.MethodPost, "/donations", fields, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDonations(t *testing.T) {
	env := newTestEnv(t)
	createDonation(t, env, nil)
	createDonation(t, env, nil)

	rec := env.do(jsonRequest(t, http.MethodGet, "/donations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `"nome_alimento"`))
}

func TestDonationsByUser(t *testing.T) {
	env := newTestEnv(t)
	createDonation(t, env, nil)

	rec := env.do(jsonRequest(t, http.MethodGet, "/donations/user/123456", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"123456"`)

	rec = env.do(jsonRequest(t, http.MethodGet, "/donations/user/999999", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = env.do(jsonRequest(t, http.MethodGet, "/donations/user/12x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDonationKeepList(t *testing.T) {
	env := newTestEnv(t)
	id := createDonation(t, env, map[string]string{
		"um.jpg":   "primeira",
		"dois.jpg": "segunda",
	})

	before := storedImages(env, id)
	require.Len(t, before, 2)
	keep := before[0]
	dropped := before[1]

	rec := env.do(multipartRequest(t, http.MethodPut, "/donations/"+id,
		map[string]string{"imagens_manter": keep},
		map[string]string{"nova.jpg": "terceira"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	updated, ok := body["imagens_atualizadas"].([]any)
	require.True(t, ok)
	require.Len(t, updated, 2)
	assert.Equal(t, keep, updated[0])

	after := storedImages(env, id)
	require.Len(t, after, 2)
	assert.Equal(t, keep, after[0], "kept file survives in order")

	_, err := os.Stat(filepath.Join(env.uploadDir, keep))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(env.uploadDir, dropped))
	assert.True(t, os.IsNotExist(err), "file left off the keep list is deleted from disk")
	_, err = os.Stat(filepath.Join(env.uploadDir, after[1]))
	assert.NoError(t, err, "newly uploaded file lands on disk")
}

func TestUpdateDonationFullReplace(t *testing.T) {
	env := newTestEnv(t)
	id := createDonation(t, env, map[string]string{
		"um.jpg":   "primeira",
		"dois.jpg": "segunda",
	})
	before := storedImages(env, id)

	// No imagens_manter: everything stored is replaced by the upload.
	rec := env.do(multipartRequest(t, http.MethodPut, "/donations/"+id,
		map[string]string{"descricao": "atualizada"},
		map[string]string{"nova.jpg": "terceira"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after := storedImages(env, id)
	require.Len(t, after, 1)
	assert.NotContains(t, before, after[0])

	for _, name := range before {
		_, err := os.Stat(filepath.Join(env.uploadDir, name))
		assert.True(t, os.IsNotExist(err), "replaced file %s must be deleted", name)
	}

	assert.Equal(t, "atualizada", env.donations.donations[id].Descricao)
	assert.Equal(t, "Arroz", env.donations.donations[id].NomeAlimento, "absent fields stay untouched")
}

func TestUpdateDonationNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPut, "/donations/999999",
		map[string]string{"descricao": "x"}, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDonation(t *testing.T) {
	env := newTestEnv(t)
	id := createDonation(t, env, map[string]string{"um.jpg": "primeira"})
	names := storedImages(env, id)

	rec := env.do(jsonRequest(t, http.MethodDelete, "/donations/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, env.donations.donations, id)
	for _, name := range names {
		_, err := os.Stat(filepath.Join(env.uploadDir, name))
		assert.True(t, os.IsNotExist(err))
	}
}

func TestDeleteDonationNotFoundTouchesNothing(t *testing.T) {
	env := newTestEnv(t)

	bystander := filepath.Join(env.uploadDir, "intocado.jpg")
	require.NoError(t, os.WriteFile(bystander, []byte("x"), 0o644))

	rec := env.do(jsonRequest(t, http.MethodDelete, "/donations/999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := os.Stat(bystander)
	assert.NoError(t, err, "a 404 delete performs no filesystem mutation")
}

func TestGallery(t *testing.T) {
	env := newTestEnv(t)
	id := createDonation(t, env, map[string]string{"um.jpg": "primeira"})

	rec := env.do(jsonRequest(t, http.MethodGet, "/donations/"+id+"/gallery", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<img src=")

	t.Run("missing donation is plain text", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodGet, "/donations/999999/gallery", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})
}
