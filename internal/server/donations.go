package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"

	"pratocheio/internal/uploads"
	"pratocheio/pkg/types"
)

const imagesField = "imagens"

type createDonationRequest struct {
	NomeAlimento     string `form:"nome_alimento" validate:"required,max=100"`
	Validade         string `form:"validade" validate:"required,dataiso"`
	Descricao        string `form:"descricao" validate:"omitempty,max=1000"`
	BairroOuDistrito string `form:"bairro_ou_distrito" validate:"required,max=100"`
	HorarioPreferido string `form:"horario_preferido" validate:"omitempty,max=100"`
	Termos           string `form:"termos" validate:"required,eq=Sim"`
	UserID           string `form:"user_id" validate:"required,len=6,numeric"`
}

// updateDonationRequest omits user_id: ownership is immutable after
// creation. imagens_manter is a control field naming which stored
// filenames survive the update; it is never persisted.
type updateDonationRequest struct {
	NomeAlimento     *string `form:"nome_alimento" validate:"omitempty,max=100"`
	Validade         *string `form:"validade" validate:"omitempty,dataiso"`
	Descricao        *string `form:"descricao" validate:"omitempty,max=1000"`
	BairroOuDistrito *string `form:"bairro_ou_distrito" validate:"omitempty,max=100"`
	HorarioPreferido *string `form:"horario_preferido" validate:"omitempty,max=100"`
	Termos           *string `form:"termos" validate:"omitempty,eq=Sim"`
	ImagensManter    *string `form:"imagens_manter"`
}

// parseDonationForm accepts both multipart and urlencoded bodies and
// decodes the value fields onto dst.
func (s *Service) parseDonationForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.respondErrors(w, []string{"invalid form payload"})
		return false
	}

	if err := decoder.Decode(dst, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode donation form")
		s.respondErrors(w, []string{"invalid form payload"})
		return false
	}

	return true
}

func (s *Service) formFiles(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, true
	}

	files := r.MultipartForm.File[imagesField]
	if len(files) > s.config.MaxImagesPerDonation {
		s.respondErrors(w, []string{fmt.Sprintf("%s accepts at most %d files", imagesField, s.config.MaxImagesPerDonation)})
		return nil, false
	}

	return files, true
}

func (s *Service) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if !s.parseDonationForm(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		s.respondErrors(w, validationMessages(err))
		return
	}

	files, ok := s.formFiles(w, r)
	if !ok {
		return
	}

	validade, err := types.ParseValidade(req.Validade)
	if err != nil {
		// dataiso already vouched for the format
		s.respondErrors(w, []string{"validade must be a date in YYYY-MM-DD format"})
		return
	}

	names, err := s.uploads.Save(files)
	if err != nil {
		s.logger.WithError(err).Error("failed to store uploaded images")
		s.internalServerError(w)
		return
	}

	donation := &types.Donation{
		NomeAlimento:     req.NomeAlimento,
		Validade:         validade,
		Descricao:        req.Descricao,
		BairroOuDistrito: req.BairroOuDistrito,
		HorarioPreferido: req.HorarioPreferido,
		Termos:           req.Termos,
		UserID:           req.UserID,
		ImagensURLs:      uploads.Join(names),
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.donations.Create(ctx, donation); err != nil {
		// The row never landed, so the files just written are orphans.
		s.uploads.Remove(names)
		s.logger.WithError(err).Error("failed to create donation in datastore")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{"id": donation.ID})
}

func (s *Service) handleDonations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donations, err := s.donations.Donations(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch donations")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, s.donationDTOs(r, donations))
}

func (s *Service) handleDonation(w http.ResponseWriter, r *http.Request) {
	donationID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.respondNotFound(w, "donation not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch donation")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, donation.DTO(uploads.PublicURLs(s.baseURL(r), donation.ImagensURLs)))
}

func (s *Service) handleDonationsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.paramID(w, r, "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donations, err := s.donations.DonationsByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch donations by user")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, s.donationDTOs(r, donations))
}

func (s *Service) handleUpdateDonation(w http.ResponseWriter, r *http.Request) {
	donationID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	unlock := s.donationLocks.lock(donationID)
	defer unlock()

	var req updateDonationRequest
	if !s.parseDonationForm(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		s.respondErrors(w, validationMessages(err))
		return
	}

	files, ok := s.formFiles(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.respondNotFound(w, "donation not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch donation for update")
		s.internalServerError(w)
		return
	}

	// No keep-list means full replacement of the stored image set.
	var keep []string
	if req.ImagensManter != nil {
		keep = uploads.Split(*req.ImagensManter)
	}
	kept, removed := uploads.Reconcile(uploads.Split(donation.ImagensURLs), keep)

	update := &types.DonationUpdate{
		NomeAlimento:     req.NomeAlimento,
		Descricao:        req.Descricao,
		BairroOuDistrito: req.BairroOuDistrito,
		HorarioPreferido: req.HorarioPreferido,
		Termos:           req.Termos,
	}
	if req.Validade != nil {
		validade, err := types.ParseValidade(*req.Validade)
		if err != nil {
			s.respondErrors(w, []string{"validade must be a date in YYYY-MM-DD format"})
			return
		}
		update.Validade = &validade
	}

	saved, err := s.uploads.Save(files)
	if err != nil {
		s.logger.WithError(err).Error("failed to store uploaded images")
		s.internalServerError(w)
		return
	}

	final := append(kept, saved...)
	joined := uploads.Join(final)
	update.Imagens = &joined

	affected, err := s.donations.Update(ctx, donationID, update)
	if err != nil {
		s.uploads.Remove(saved)
		s.logger.WithError(err).Error("failed to update donation")
		s.internalServerError(w)
		return
	}
	if !affected {
		s.uploads.Remove(saved)
		s.respondNotFound(w, "donation not found")
		return
	}

	// Row committed; now the displaced files can go.
	s.uploads.Remove(removed)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":             "donation updated",
		"imagens_atualizadas": final,
	})
}

func (s *Service) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	donationID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	unlock := s.donationLocks.lock(donationID)
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.respondNotFound(w, "donation not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch donation for delete")
		s.internalServerError(w)
		return
	}

	affected, err := s.donations.Delete(ctx, donationID)
	if err != nil {
		s.logger.WithError(err).Error("failed to delete donation")
		s.internalServerError(w)
		return
	}
	if !affected {
		s.respondNotFound(w, "donation not found")
		return
	}

	// Row gone; the files follow.
	s.uploads.Remove(uploads.Split(donation.ImagensURLs))

	s.respondMessage(w, http.StatusOK, "donation deleted")
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!doctype html>
<html>
<head><title>Doação {{.ID}}</title></head>
<body>
<h1>{{.NomeAlimento}}</h1>
{{range .URLs}}<img src="{{.}}" alt="{{$.NomeAlimento}}" style="max-width:320px;margin:8px">
{{end}}</body>
</html>
`))

// handleGallery renders a bare image list for manual inspection of a
// donation's uploads.
func (s *Service) handleGallery(w http.ResponseWriter, r *http.Request) {
	donationID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			http.Error(w, "donation not found", http.StatusNotFound)
			return
		}
		s.logger.WithError(err).Error("failed to fetch donation for gallery")
		s.internalServerError(w)
		return
	}

	data := struct {
		ID           string
		NomeAlimento string
		URLs         []string
	}{
		ID:           donation.ID,
		NomeAlimento: donation.NomeAlimento,
		URLs:         uploads.PublicURLs(s.baseURL(r), donation.ImagensURLs),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := galleryTemplate.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render gallery")
	}
}

func (s *Service) donationDTOs(r *http.Request, donations []*types.Donation) []types.DonationDTO {
	base := s.baseURL(r)
	dtos := make([]types.DonationDTO, 0, len(donations))
	for _, donation := range donations {
		dtos = append(dtos, donation.DTO(uploads.PublicURLs(base, donation.ImagensURLs)))
	}
	return dtos
}
