package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
	"github.com/dustinbroussard/trivia-sass-attack/internal/bank"
	"github.com/dustinbroussard/trivia-sass-attack/internal/config"
	"github.com/dustinbroussard/trivia-sass-attack/internal/game"
	"github.com/dustinbroussard/trivia-sass-attack/internal/library"
	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// Deps are the services the HTTP layer fronts. Generator may be nil when
// no API credential is configured; generation endpoints then return 503.
type Deps struct {
	Game      *game.Service
	Bank      *bank.Bank
	Library   library.Store
	Generator *ai.Generator
}

type handlers struct {
	deps   Deps
	logger zerolog.Logger
}

// NewHTTPServer wires base routes (health, metrics) plus the game and
// library APIs.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Deps) *http.Server {
	h := &handlers{deps: deps, logger: logger.With().Str("component", "http").Logger()}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/games/single", h.createSingle)
	mux.HandleFunc("POST /v1/games/multiplayer", h.createMultiplayer)
	mux.HandleFunc("POST /v1/games/join", h.joinMultiplayer)
	mux.HandleFunc("GET /v1/games/current", h.gameState)
	mux.HandleFunc("GET /v1/games/stats", h.gameStats)
	mux.HandleFunc("POST /v1/games/question", h.nextQuestion)
	mux.HandleFunc("POST /v1/games/answer", h.answerQuestion)
	mux.HandleFunc("POST /v1/games/reset", h.resetGame)

	mux.HandleFunc("GET /v1/bank/stats", h.bankStats)

	mux.HandleFunc("GET /v1/library/questions", h.listQuestions)
	mux.HandleFunc("GET /v1/library/stats", h.libraryStats)
	mux.HandleFunc("POST /v1/library/generate", h.generateQuestion)
	mux.HandleFunc("GET /v1/library/pack", h.exportPack)
	mux.HandleFunc("POST /v1/library/pack", h.importPack)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func (h *handlers) createSingle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.PlayerName == "" {
		req.PlayerName = "Player"
	}
	state := h.deps.Game.CreateSinglePlayerGame(r.Context(), req.PlayerName)
	h.respond(w, http.StatusCreated, state)
}

func (h *handlers) createMultiplayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HostName string `json:"hostName"`
		GameCode string `json:"gameCode"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.HostName == "" || req.GameCode == "" {
		h.fail(w, http.StatusBadRequest, "hostName and gameCode are required")
		return
	}
	state := h.deps.Game.CreateMultiplayerGame(r.Context(), req.HostName, req.GameCode)
	h.respond(w, http.StatusCreated, state)
}

func (h *handlers) joinMultiplayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
		GameCode   string `json:"gameCode"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state := h.deps.Game.JoinMultiplayerGame(r.Context(), req.PlayerName, req.GameCode)
	if state == nil {
		h.fail(w, http.StatusNotFound, "no joinable game with that code")
		return
	}
	h.respond(w, http.StatusOK, state)
}

func (h *handlers) gameState(w http.ResponseWriter, r *http.Request) {
	state := h.deps.Game.GameState()
	if state == nil {
		h.fail(w, http.StatusNotFound, "no game in progress")
		return
	}
	h.respond(w, http.StatusOK, state)
}

func (h *handlers) gameStats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.deps.Game.GameStats())
}

func (h *handlers) nextQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	category := bank.Category(req.Category)
	if category != "" && !h.deps.Game.CanChooseCategory() {
		h.fail(w, http.StatusForbidden, "category choice requires a 3+ streak")
		return
	}

	question, err := h.deps.Game.NextQuestion(r.Context(), category)
	if err != nil {
		h.logger.Error().Err(err).Msg("next question failed")
		h.fail(w, http.StatusBadGateway, "question draw failed")
		return
	}
	if question == nil {
		h.fail(w, http.StatusNotFound, "no question available")
		return
	}
	h.respond(w, http.StatusOK, map[string]any{
		"question":          question,
		"canChooseCategory": h.deps.Game.CanChooseCategory(),
	})
}

func (h *handlers) answerQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnswerIndex *int `json:"answerIndex"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.AnswerIndex == nil {
		h.fail(w, http.StatusBadRequest, "answerIndex is required")
		return
	}
	result := h.deps.Game.AnswerQuestion(r.Context(), *req.AnswerIndex)
	h.respond(w, http.StatusOK, map[string]any{
		"result": result,
		"state":  h.deps.Game.GameState(),
	})
}

func (h *handlers) resetGame(w http.ResponseWriter, r *http.Request) {
	h.deps.Game.ResetGame(r.Context())
	h.respond(w, http.StatusOK, map[string]any{"reset": true})
}

func (h *handlers) bankStats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.deps.Bank.Stats())
}

func (h *handlers) listQuestions(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	docs, err := h.deps.Library.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("library list failed")
		h.fail(w, http.StatusInternalServerError, "library unavailable")
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"items": docs, "count": len(docs)})
}

func (h *handlers) libraryStats(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	count, err := h.deps.Library.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("library count failed")
		h.fail(w, http.StatusInternalServerError, "library unavailable")
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"count": count})
}

func (h *handlers) generateQuestion(w http.ResponseWriter, r *http.Request) {
	if h.deps.Generator == nil {
		h.fail(w, http.StatusServiceUnavailable, "no generation credential configured")
		return
	}
	var req struct {
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
		Tone       string `json:"tone"`
		Seed       string `json:"seed"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	category := trivia.Category(req.Category)
	difficulty := trivia.Difficulty(req.Difficulty)
	if !trivia.ValidCategory(category) || !trivia.ValidDifficulty(difficulty) {
		h.fail(w, http.StatusBadRequest, "unknown category or difficulty")
		return
	}

	question, err := h.deps.Generator.GenerateQuestion(r.Context(), ai.GenerateParams{
		Category:   category,
		Difficulty: difficulty,
		Tone:       trivia.Tone(req.Tone),
		Seed:       req.Seed,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ai.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		h.logger.Warn().Err(err).Str("category", req.Category).Msg("generation failed")
		h.fail(w, status, err.Error())
		return
	}

	doc := library.QuestionDoc{
		Question: *question,
		Tone:     trivia.Tone(req.Tone),
		Source:   library.SourceGenerated,
	}
	result, err := h.deps.Library.EnsureUniqueByHash(r.Context(), doc)
	if err != nil {
		h.logger.Error().Err(err).Msg("library lookup failed")
		h.fail(w, http.StatusInternalServerError, "library unavailable")
		return
	}
	status := http.StatusOK
	if !result.Duplicate {
		if _, err := h.deps.Library.PutMany(r.Context(), []library.QuestionDoc{result.Doc}); err != nil {
			h.logger.Error().Err(err).Msg("library insert failed")
			h.fail(w, http.StatusInternalServerError, "library unavailable")
			return
		}
		status = http.StatusCreated
	}
	h.respond(w, status, map[string]any{"question": result.Doc, "duplicate": result.Duplicate})
}

func (h *handlers) exportPack(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	docs, err := h.deps.Library.List(r.Context(), filter, queryInt(r, "limit", 10000), 0)
	if err != nil {
		h.logger.Error().Err(err).Msg("pack export failed")
		h.fail(w, http.StatusInternalServerError, "library unavailable")
		return
	}
	data, err := library.ExportPack(docs)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "pack serialization failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="trivia-pack.json"`)
	_, _ = w.Write(data)
}

func (h *handlers) importPack(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		h.fail(w, http.StatusBadRequest, "unreadable body")
		return
	}
	result, err := library.ImportPack(r.Context(), h.deps.Library, raw)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, http.StatusOK, result)
}

func (h *handlers) parseFilter(w http.ResponseWriter, r *http.Request) (library.Filter, bool) {
	filter := library.Filter{
		Category:   trivia.Category(r.URL.Query().Get("category")),
		Difficulty: trivia.Difficulty(r.URL.Query().Get("difficulty")),
	}
	if filter.Category != "" && !trivia.ValidCategory(filter.Category) {
		h.fail(w, http.StatusBadRequest, "unknown category")
		return library.Filter{}, false
	}
	if filter.Difficulty != "" && !trivia.ValidDifficulty(filter.Difficulty) {
		h.fail(w, http.StatusBadRequest, "unknown difficulty")
		return library.Filter{}, false
	}
	return filter, true
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func (h *handlers) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Debug().Err(err).Msg("response encode failed")
	}
}

func (h *handlers) fail(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
