package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
	"github.com/GeorgiiSadunyan/Recomendation/internal/metrics"
	"github.com/GeorgiiSadunyan/Recomendation/internal/posters"
	"github.com/GeorgiiSadunyan/Recomendation/internal/recommend"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

var allowedRatings = map[float64]struct{}{
	0.5: {}, 1.0: {}, 1.5: {}, 2.0: {}, 2.5: {},
	3.0: {}, 3.5: {}, 4.0: {}, 4.5: {}, 5.0: {},
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieResponse struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Genres    []string `json:"genres"`
	PosterURL *string  `json:"posterUrl,omitempty"`
}

type recommendedMovieResponse struct {
	movieResponse
	Score float64 `json:"score"`
}

type recommendationsResponse struct {
	UserID int64                      `json:"userId"`
	Items  []recommendedMovieResponse `json:"items"`
	Reason string                     `json:"reason,omitempty"`
}

type profileEntryResponse struct {
	movieResponse
	Rating float64 `json:"rating"`
}

type profileResponse struct {
	UserID int64                  `json:"userId"`
	Items  []profileEntryResponse `json:"items"`
}

type createUserResponse struct {
	UserID int64 `json:"userId"`
}

type onboardingResponse struct {
	UserID int64           `json:"userId"`
	Movies []movieResponse `json:"movies"`
}

type submitRatingsRequest struct {
	Ratings map[string]float64 `json:"ratings"`
}

type submitRatingsResponse struct {
	UserID int64 `json:"userId"`
	Saved  int   `json:"saved"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
	Total int             `json:"total"`
}

type statsResponse struct {
	Movies  int `json:"movies"`
	Ratings int `json:"ratings"`
	Users   int `json:"users"`
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"genres": s.catalog.Genres()})
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	genres, err := parseGenresParam(r.URL.Query().Get("genres"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	limit, err := parseLimitParam(r.URL.Query().Get("limit"), defaultSearchLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	matched := s.catalog.FilterByGenres(genres)
	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	items := make([]movieResponse, 0, len(matched))
	for _, m := range matched {
		items = append(items, toMovieResponse(m))
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{Items: items, Total: total})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.logger.Printf("stats error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute stats")
		return
	}
	s.respondJSON(w, http.StatusOK, statsResponse{
		Movies:  s.catalog.Len(),
		Ratings: stats.Ratings,
		Users:   stats.Users,
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := s.store.NextUserID()
	if err != nil {
		s.logger.Printf("allocate user id error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to allocate user id")
		return
	}
	metrics.UsersCreated.Inc()
	s.respondJSON(w, http.StatusCreated, createUserResponse{UserID: userID})
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	sample := s.catalog.Sample(s.cfg.Scoring.OnboardingSize)
	movies := make([]movieResponse, 0, len(sample))
	for _, m := range sample {
		movies = append(movies, toMovieResponse(m))
	}
	s.respondJSON(w, http.StatusOK, onboardingResponse{UserID: userID, Movies: movies})
}

func (s *Server) handleSubmitRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req submitRatingsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if len(req.Ratings) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "ratings must not be empty")
		return
	}

	batch := make(map[int64]float64, len(req.Ratings))
	for rawID, value := range req.Ratings {
		movieID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("invalid movie id %q", rawID))
			return
		}
		if _, ok := allowedRatings[value]; !ok {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be one of {0.5, 1.0, ..., 5.0}")
			return
		}
		batch[movieID] = value
	}

	if err := s.store.Append(userID, batch); err != nil {
		metrics.AppendErrors.Inc()
		s.logger.Printf("append ratings error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to persist ratings; please retry")
		return
	}
	metrics.RatingsAppended.Add(float64(len(batch)))

	s.respondJSON(w, http.StatusCreated, submitRatingsResponse{UserID: userID, Saved: len(batch)})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	limit, err := parseLimitParam(r.URL.Query().Get("limit"), s.cfg.Scoring.TopN)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	metrics.RecommendRequests.Inc()
	start := time.Now()
	recs, err := s.engine.Recommend(r.Context(), userID, limit)
	metrics.ObserveRecommendDuration(start)

	if err != nil {
		// Zero eligible candidates and a fully empty rating set are
		// reported outcomes, not failures: the caller shows a neutral
		// message instead of an error page.
		switch {
		case errors.Is(err, recommend.ErrNoCandidates):
			metrics.EmptyRecommendations.WithLabelValues("no_candidates").Inc()
			s.respondJSON(w, http.StatusOK, recommendationsResponse{
				UserID: userID,
				Items:  []recommendedMovieResponse{},
				Reason: "no eligible movies; rate a few movies first",
			})
		case errors.Is(err, recommend.ErrInsufficientData):
			metrics.EmptyRecommendations.WithLabelValues("insufficient_data").Inc()
			s.respondJSON(w, http.StatusOK, recommendationsResponse{
				UserID: userID,
				Items:  []recommendedMovieResponse{},
				Reason: "no ratings available yet",
			})
		default:
			s.logger.Printf("recommend error for user %d: %v", userID, err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations")
		}
		return
	}

	items := make([]recommendedMovieResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, recommendedMovieResponse{
			movieResponse: s.enrichMovie(r.Context(), rec.Movie),
			Score:         rec.FinalScore,
		})
	}
	s.respondJSON(w, http.StatusOK, recommendationsResponse{UserID: userID, Items: items})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	entries, err := s.engine.UserProfile(userID)
	if err != nil {
		s.logger.Printf("profile error for user %d: %v", userID, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}

	items := make([]profileEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, profileEntryResponse{
			movieResponse: toMovieResponse(entry.Movie),
			Rating:        entry.Rating,
		})
	}
	s.respondJSON(w, http.StatusOK, profileResponse{UserID: userID, Items: items})
}

// enrichMovie decorates a movie with poster metadata, best effort. Lookup
// failures never affect the response.
func (s *Server) enrichMovie(ctx context.Context, movie domain.Movie) movieResponse {
	resp := toMovieResponse(movie)
	if s.posters == nil {
		return resp
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Posters.TimeoutSecs)*time.Second)
	defer cancel()

	result, err := s.posters.Fetch(fetchCtx, movie.Title)
	if err != nil {
		if !errors.Is(err, posters.ErrNotFound) {
			s.logger.Printf("posters fetch failed for %q: %v", movie.Title, err)
		}
		return resp
	}
	if result.PosterURL != "" {
		resp.PosterURL = &result.PosterURL
	}
	return resp
}

func toMovieResponse(movie domain.Movie) movieResponse {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}
	return movieResponse{ID: movie.ID, Title: movie.Title, Genres: genres}
}

func parseUserIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userID")
	if raw == "" {
		return 0, fmt.Errorf("missing userID parameter")
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 1 {
		return 0, fmt.Errorf("userID must be a positive integer")
	}
	return userID, nil
}

func parseGenresParam(raw string) ([]string, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid genres parameter")
	}
	var genres []string
	for _, g := range strings.Split(decoded, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		return nil, fmt.Errorf("genres parameter is required")
	}
	return genres, nil
}

func parseLimitParam(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return limit, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}
