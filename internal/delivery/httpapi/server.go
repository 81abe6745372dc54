package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"auto_publish_social/config"
	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/logger"
	"auto_publish_social/internal/usecase"
)

// Server exposes a lightweight REST API for cron setup, account registration
// and job visibility. It also serves the media directory publicly, which the
// Instagram Graph API requires for ingesting artifacts.
type Server struct {
	cfg               *config.Config
	setup             *usecase.CronSetup
	crons             domain.CronRepository
	executions        domain.ExecutionRepository
	presets           domain.PresetRepository
	instagramAccounts domain.InstagramAccountRepository
	youtubeAccounts   domain.YouTubeAccountRepository
	server            *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	setup *usecase.CronSetup,
	crons domain.CronRepository,
	executions domain.ExecutionRepository,
	presets domain.PresetRepository,
	instagramAccounts domain.InstagramAccountRepository,
	youtubeAccounts domain.YouTubeAccountRepository,
) *Server {
	mux := http.NewServeMux()
	s := &Server{
		cfg:               cfg,
		setup:             setup,
		crons:             crons,
		executions:        executions,
		presets:           presets,
		instagramAccounts: instagramAccounts,
		youtubeAccounts:   youtubeAccounts,
	}

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/accounts/instagram", s.handleInstagramAccounts)
	mux.HandleFunc("/api/accounts/youtube", s.handleYouTubeAccounts)
	mux.HandleFunc("/api/crons", s.handleCrons)
	mux.HandleFunc("/api/crons/", s.handleCronDetail)
	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))

	s.server = &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: loggingMiddleware(mux),
	}
	return s
}

// Start begins serving HTTP requests in a separate goroutine.
func (s *Server) Start() error {
	if s.cfg.ServerPort == "" {
		return fmt.Errorf("server port is not configured")
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Printf("http api server stopped with error: %v", err)
		}
	}()
	logger.Info().Printf("HTTP API server listening on %s", s.server.Addr)
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		presets, err := s.presets.GetAll()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, presets)

	case http.MethodPost:
		var payload struct {
			Name        string `json:"name"`
			ImagePrompt string `json:"image_prompt"`
			VideoPrompt string `json:"video_prompt"`
			AudioPrompt string `json:"audio_prompt"`
			Avatar      string `json:"avatar"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		preset := &domain.Preset{
			Name:        payload.Name,
			ImagePrompt: payload.ImagePrompt,
			VideoPrompt: payload.VideoPrompt,
			AudioPrompt: payload.AudioPrompt,
			Avatar:      payload.Avatar,
		}
		if err := s.presets.Save(preset); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, preset)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleInstagramAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.instagramAccounts.GetAll()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp := make([]*instagramAccountResponse, 0, len(accounts))
		for _, account := range accounts {
			resp = append(resp, toInstagramAccountResponse(account))
		}
		respondJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var payload struct {
			Name        string    `json:"name"`
			BusinessID  string    `json:"instagram_business_id"`
			AccessToken string    `json:"access_token"`
			ExpiresAt   time.Time `json:"expires_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Name == "" || payload.BusinessID == "" || payload.AccessToken == "" {
			respondError(w, http.StatusBadRequest, "name, instagram_business_id and access_token are required")
			return
		}
		// A zero or past expiry would make every publish fail with an expired
		// token, so reject it at registration time
		if !payload.ExpiresAt.After(time.Now()) {
			respondError(w, http.StatusBadRequest, "expires_at must be a future timestamp")
			return
		}

		account := &domain.InstagramAccount{
			Name:        payload.Name,
			BusinessID:  payload.BusinessID,
			AccessToken: payload.AccessToken,
			ExpiresAt:   payload.ExpiresAt,
		}
		if err := s.instagramAccounts.Save(account); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, toInstagramAccountResponse(account))

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleYouTubeAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.youtubeAccounts.GetAll()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp := make([]*youtubeAccountResponse, 0, len(accounts))
		for _, account := range accounts {
			resp = append(resp, toYouTubeAccountResponse(account))
		}
		respondJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var payload struct {
			Name         string `json:"name"`
			RefreshToken string `json:"refresh_token"`
			ClientID     string `json:"client_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Name == "" || payload.RefreshToken == "" {
			respondError(w, http.StatusBadRequest, "name and refresh_token are required")
			return
		}

		account := &domain.YouTubeAccount{
			Name:         payload.Name,
			RefreshToken: payload.RefreshToken,
			ClientID:     payload.ClientID,
		}
		if err := s.youtubeAccounts.Save(account); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, toYouTubeAccountResponse(account))

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCrons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		crons, err := s.crons.GetAll()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp := make([]*cronResponse, 0, len(crons))
		for _, cron := range crons {
			resp = append(resp, toCronResponse(cron))
		}
		respondJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var payload struct {
			PresetID    string `json:"preset_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Interval    string `json:"interval"`
			SourceURL   string `json:"source_url"`
			MediaType   string `json:"media_type"`
			AIModel     string `json:"ai_model"`
			Platforms   struct {
				Instagram bool `json:"instagram"`
				YouTube   bool `json:"youtube"`
			} `json:"platforms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cron, err := s.setup.Create(usecase.SetupRequest{
			PresetID:    payload.PresetID,
			Title:       payload.Title,
			Description: payload.Description,
			Interval:    payload.Interval,
			SourceURL:   payload.SourceURL,
			MediaType:   domain.MediaType(payload.MediaType),
			AIModel:     domain.AIModel(payload.AIModel),
			Instagram:   payload.Platforms.Instagram,
			YouTube:     payload.Platforms.YouTube,
		})
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, toCronResponse(cron))

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCronDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/crons/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	cron, err := s.crons.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cron == nil {
		http.NotFound(w, r)
		return
	}

	executions, err := s.executions.GetByCronID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	execResp := make([]*executionResponse, 0, len(executions))
	for _, execution := range executions {
		execResp = append(execResp, toExecutionResponse(execution))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"cron":       toCronResponse(cron),
		"executions": execResp,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

type cronResponse struct {
	ID          string    `json:"id"`
	PresetID    string    `json:"preset_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Interval    string    `json:"interval,omitempty"`
	SourceURL   string    `json:"source_url"`
	VideoPath   string    `json:"video_path,omitempty"`
	MediaType   string    `json:"media_type"`
	AIModel     string    `json:"ai_model"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCronResponse(cron *domain.PublicationCron) *cronResponse {
	return &cronResponse{
		ID:          cron.ID,
		PresetID:    cron.PresetID,
		Title:       cron.Title,
		Description: cron.Description,
		Interval:    cron.Interval,
		SourceURL:   cron.SourceURL,
		VideoPath:   cron.VideoPath,
		MediaType:   string(cron.MediaType),
		AIModel:     string(cron.AIModel),
		ScheduledAt: cron.ScheduledAt,
		Status:      string(cron.Status),
		CreatedAt:   cron.CreatedAt,
	}
}

type executionResponse struct {
	ID           string     `json:"id"`
	Platform     string     `json:"platform"`
	AccountID    string     `json:"account_id"`
	Status       string     `json:"status"`
	ExternalID   string     `json:"external_id,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ExecutedAt   *time.Time `json:"executed_at,omitempty"`
}

func toExecutionResponse(execution *domain.CronExecution) *executionResponse {
	return &executionResponse{
		ID:           execution.ID,
		Platform:     string(execution.Target.Platform),
		AccountID:    execution.Target.AccountID,
		Status:       string(execution.Status),
		ExternalID:   execution.ExternalID,
		ErrorMessage: execution.ErrorMessage,
		ExecutedAt:   execution.ExecutedAt,
	}
}

type instagramAccountResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BusinessID string    `json:"instagram_business_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toInstagramAccountResponse(account *domain.InstagramAccount) *instagramAccountResponse {
	// Access tokens never leave the server
	return &instagramAccountResponse{
		ID:         account.ID,
		Name:       account.Name,
		BusinessID: account.BusinessID,
		ExpiresAt:  account.ExpiresAt,
		UpdatedAt:  account.UpdatedAt,
	}
}

type youtubeAccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toYouTubeAccountResponse(account *domain.YouTubeAccount) *youtubeAccountResponse {
	return &youtubeAccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		ClientID:  account.ClientID,
		CreatedAt: account.CreatedAt,
	}
}
