// Package server exposes the chat agent and the listings store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
)

// ChatHandler is what the server needs from the chat layer.
type ChatHandler interface {
	HandleMessage(ctx context.Context, message string, history []contractx.Turn) (contractx.ChatResult, error)
}

type Server struct {
	chat  ChatHandler
	store listing.Store
	mux   *http.ServeMux
}

func New(chat ChatHandler, store listing.Store) *Server {
	s := &Server{
		chat:  chat,
		store: store,
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /listings", s.handleListListings)
	s.mux.HandleFunc("POST /listings", s.handleCreateListing)
	s.mux.HandleFunc("GET /listings/{id}", s.handleGetListing)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	logger := log.With().Str("request_id", reqID).Logger()
	w.Header().Set("X-Request-ID", reqID)
	start := time.Now()

	s.mux.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))

	logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("took", time.Since(start)).
		Msg("http request")
}

type ChatRequest struct {
	Message string           `json:"message"`
	History []contractx.Turn `json:"history,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문이 올바른 JSON이 아닙니다.")
		return
	}

	result, err := s.chat.HandleMessage(r.Context(), req.Message, req.History)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			writeError(w, http.StatusBadRequest, "메시지를 입력해주세요.")
			return
		}
		log.Error().Err(err).Msg("chat turn failed")
		writeError(w, http.StatusInternalServerError, "요청을 처리하지 못했습니다.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := listing.StatusActive
	if v := q.Get("status"); v != "" {
		status = listing.Status(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "알 수 없는 status 값입니다.")
			return
		}
	}
	sortBy := listing.NormalizeSortField(q.Get("sort_by"))
	order := listing.NormalizeSortOrder(q.Get("sort_order"))

	listings, err := s.store.List(r.Context(), status, sortBy, order)
	if err != nil {
		log.Error().Err(err).Msg("list listings failed")
		writeError(w, http.StatusInternalServerError, "매물 목록을 불러오지 못했습니다.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": listings,
		"count":    len(listings),
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "매물 ID는 정수여야 합니다.")
		return
	}

	l, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			writeError(w, http.StatusNotFound, "매물을 찾을 수 없습니다.")
			return
		}
		log.Error().Err(err).Int64("listing_id", id).Msg("get listing failed")
		writeError(w, http.StatusInternalServerError, "매물을 불러오지 못했습니다.")
		return
	}

	writeJSON(w, http.StatusOK, l)
}

type CreateListingRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Region   string `json:"region"`
	ImageURL string `json:"image_url,omitempty"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문이 올바른 JSON이 아닙니다.")
		return
	}

	l := &listing.Listing{
		Title:    req.Title,
		Content:  req.Content,
		Price:    req.Price,
		Category: req.Category,
		Region:   req.Region,
		ImageURL: req.ImageURL,
	}
	if err := s.store.Create(r.Context(), l); err != nil {
		if errors.Is(err, listing.ErrInvalidListing) {
			writeError(w, http.StatusBadRequest, "제목, 내용, 가격(0원 초과)을 확인해주세요.")
			return
		}
		log.Error().Err(err).Msg("create listing failed")
		writeError(w, http.StatusInternalServerError, "매물을 등록하지 못했습니다.")
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
