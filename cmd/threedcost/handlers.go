package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/calculator"
	"github.com/Simplici0/threedcost/internal/kvstore"
	"github.com/Simplici0/threedcost/internal/material"
	"github.com/Simplici0/threedcost/internal/pricing"
	"github.com/Simplici0/threedcost/internal/settings"
)

const persistWarning = "change applied but not saved; it will be lost on restart"

type healthResponse struct {
	Status          string `json:"status"`
	LoadingSettings bool   `json:"loadingSettings"`
	LoadingProfiles bool   `json:"loadingProfiles"`
}

type settingsResponse struct {
	Settings settings.AppSettings `json:"settings"`
	Warning  string               `json:"warning,omitempty"`
}

type profilesResponse struct {
	Profiles []material.Profile `json:"profiles"`
}

type profileResponse struct {
	Profile material.Profile `json:"profile"`
	Warning string           `json:"warning,omitempty"`
}

type calculateRequest struct {
	Mode                string            `json:"mode"`
	MaterialID          string            `json:"materialId"`
	PrefillMaterialCost bool              `json:"prefillMaterialCost"`
	Input               map[string]string `json:"input"`
}

type calculateResponse struct {
	Mode     pricing.Mode      `json:"mode"`
	Currency settings.Currency `json:"currency"`
	Input    pricing.Input     `json:"input"`
	Material *material.Profile `json:"material,omitempty"`
	Result   pricing.Result    `json:"result"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		LoadingSettings: s.settings.IsLoading(),
		LoadingProfiles: s.profiles.IsLoading(),
	})
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.settings.Settings()})
}

func (s *server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.settings.Update(r.Context(), patch)
	s.respondSettings(w, updated, err)
}

func (s *server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	updated, err := s.settings.Reset(r.Context())
	s.respondSettings(w, updated, err)
}

func (s *server) respondSettings(w http.ResponseWriter, updated settings.AppSettings, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, settingsResponse{Settings: updated})
	case errors.Is(err, settings.ErrInvalidSetting):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, kvstore.ErrPersist):
		writeJSON(w, http.StatusOK, settingsResponse{Settings: updated, Warning: persistWarning})
	default:
		s.log.Error("update settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update settings")
	}
}

func (s *server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profilesResponse{Profiles: s.profiles.Profiles()})
}

func (s *server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.profiles.Profile(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, material.ErrProfileNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
}

func (s *server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile material.Profile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.profiles.Add(r.Context(), profile)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, profileResponse{Profile: added})
	case errors.Is(err, material.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, material.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, kvstore.ErrPersist):
		writeJSON(w, http.StatusCreated, profileResponse{Profile: added, Warning: persistWarning})
	default:
		s.log.Error("create profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create profile")
	}
}

func (s *server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile material.Profile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile.ID = chi.URLParam(r, "id")

	err := s.profiles.Update(r.Context(), profile)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
	case errors.Is(err, material.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, material.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, kvstore.ErrPersist):
		writeJSON(w, http.StatusOK, profileResponse{Profile: profile, Warning: persistWarning})
	default:
		s.log.Error("update profile", zap.String("profile_id", profile.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update profile")
	}
}

func (s *server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.profiles.Delete(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, kvstore.ErrPersist):
		writeJSON(w, http.StatusOK, map[string]string{"warning": persistWarning})
	default:
		s.log.Error("delete profile", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
	}
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := pricing.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current := s.settings.Settings()
	form := calculator.NewForm(current)
	for field, value := range req.Input {
		if err := form.Set(calculator.Field(field), value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp := calculateResponse{Mode: mode, Currency: current.Currency}
	if req.MaterialID != "" {
		if !form.SelectMaterial(req.MaterialID, s.profiles.Profiles()) {
			writeError(w, http.StatusNotFound, material.ErrProfileNotFound.Error())
			return
		}
		// An explicit materialCost in the request wins over the prefill.
		if _, explicit := req.Input[string(calculator.FieldMaterialCost)]; req.PrefillMaterialCost && !explicit {
			form.PrefillFromSelected()
		}
		selected, _ := form.Selected()
		resp.Material = &selected
	}

	resp.Result = form.Calculate(mode, current)
	resp.Input = form.Values()
	writeJSON(w, http.StatusOK, resp)
}
