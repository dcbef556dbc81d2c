package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pratocheio/internal/uploads"
	"pratocheio/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

const storeTimeout = 5 * time.Second

type createUserRequest struct {
	Nome             string `json:"nome" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Senha            string `json:"senha" validate:"required,min=6"`
	Tipo             string `json:"tipo" validate:"required,tipousuario"`
	BairroOuDistrito string `json:"bairro_ou_distrito" validate:"required,max=100"`
	Cidade           string `json:"cidade" validate:"required,max=100"`
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type updateUserRequest struct {
	Nome             *string `json:"nome" validate:"omitempty,max=100"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Senha            *string `json:"senha" validate:"omitempty,min=6"`
	Tipo             *string `json:"tipo" validate:"omitempty,tipousuario"`
	BairroOuDistrito *string `json:"bairro_ou_distrito" validate:"omitempty,max=100"`
	Cidade           *string `json:"cidade" validate:"omitempty,max=100"`
}

func (s *Service) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondErrors(w, []string{"request body must be valid JSON"})
		return false
	}
	return true
}

func (s *Service) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		s.respondErrors(w, validationMessages(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	user := &types.User{
		Nome:             req.Nome,
		Email:            req.Email,
		SenhaHash:        string(hash),
		Tipo:             req.Tipo,
		BairroOuDistrito: req.BairroOuDistrito,
		Cidade:           req.Cidade,
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("failed to create user in datastore")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, user.DTO())
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		s.respondErrors(w, validationMessages(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondNotFound(w, "user not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user for login")
		s.internalServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.Senha)); err != nil {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "incorrect password"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user.DTO(),
	})
}

func (s *Service) handleUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := s.users.User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondNotFound(w, "user not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, user.DTO())
}

// handleUserComplete returns the user profile together with every
// donation they own, image URLs expanded.
func (s *Service) handleUserComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := s.users.User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondNotFound(w, "user not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user")
		s.internalServerError(w)
		return
	}

	donations, err := s.donations.DonationsByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch user donations")
		s.internalServerError(w)
		return
	}

	base := s.baseURL(r)
	dtos := make([]types.DonationDTO, 0, len(donations))
	for _, donation := range donations {
		dtos = append(dtos, donation.DTO(uploads.PublicURLs(base, donation.ImagensURLs)))
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"usuario": user.DTO(),
		"doacoes": dtos,
	})
}

func (s *Service) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		s.respondErrors(w, validationMessages(err))
		return
	}

	update := &types.UserUpdate{
		Nome:             req.Nome,
		Email:            req.Email,
		Tipo:             req.Tipo,
		BairroOuDistrito: req.BairroOuDistrito,
		Cidade:           req.Cidade,
	}

	if req.Senha != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Senha), bcrypt.DefaultCost)
		if err != nil {
			s.logger.WithError(err).Error("failed to hash password")
			s.internalServerError(w)
			return
		}
		hashed := string(hash)
		update.SenhaHash = &hashed
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	affected, err := s.users.Update(ctx, userID, update)
	if err != nil {
		s.logger.WithError(err).Error("failed to update user")
		s.internalServerError(w)
		return
	}
	if !affected {
		s.respondNotFound(w, "user not found")
		return
	}

	s.respondMessage(w, http.StatusOK, "user updated")
}

// Deleting a user does not touch their donations; orphan cleanup is a
// product decision still open.
func (s *Service) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.paramID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	affected, err := s.users.Delete(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to delete user")
		s.internalServerError(w)
		return
	}
	if !affected {
		s.respondNotFound(w, "user not found")
		return
	}

	s.respondMessage(w, http.StatusOK, "user deleted")
}
