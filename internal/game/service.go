package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/bank"
	"github.com/dustinbroussard/trivia-sass-attack/internal/scoring"
)

const (
	stateKey = "tsa:game:state"
	statsKey = "tsa:game:stats"

	// roundDuration is the answer window the scoring engine measures
	// remaining time against.
	roundDuration = 30 * time.Second

	// categoryPickStreak is the streak at which a player earns the
	// choose-your-category privilege.
	categoryPickStreak = 3
)

// Service owns per-session player state, turn order, win detection, and
// stats. It composes the question bank and the scoring engine, and
// round-trips snapshots through the injected persistence port on every
// mutation. All public methods are safe for concurrent use; the HTTP
// layer drives them from handler goroutines.
type Service struct {
	bank      *bank.Bank
	snapshots SnapshotStore
	logger    zerolog.Logger
	now       func() time.Time

	mu           sync.RWMutex
	rng          *rand.Rand
	state        *State
	stats        Stats
	questionOpen time.Time
}

// NewService restores any persisted session; corrupt or missing
// snapshots degrade to a fresh in-memory state.
func NewService(ctx context.Context, questionBank *bank.Bank, snapshots SnapshotStore, logger zerolog.Logger) *Service {
	s := &Service{
		bank:      questionBank,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "game_service").Logger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
	s.load(ctx)
	return s
}

func (s *Service) load(ctx context.Context) {
	if data, err := s.snapshots.Get(ctx, stateKey); err == nil && data != nil {
		var state State
		if err := json.Unmarshal(data, &state); err != nil {
			s.logger.Warn().Err(err).Msg("discarding corrupt state snapshot")
		} else {
			s.state = &state
		}
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load state snapshot")
	}

	if data, err := s.snapshots.Get(ctx, statsKey); err == nil && data != nil {
		var stats Stats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn().Err(err).Msg("discarding corrupt stats snapshot")
		} else {
			s.stats = stats
		}
	}
}

func (s *Service) save(ctx context.Context) {
	if s.state != nil {
		if data, err := json.Marshal(s.state); err == nil {
			if err := s.snapshots.Set(ctx, stateKey, data); err != nil {
				s.logger.Warn().Err(err).Msg("state snapshot save failed")
			}
		}
	}
	if data, err := json.Marshal(s.stats); err == nil {
		if err := s.snapshots.Set(ctx, statsKey, data); err != nil {
			s.logger.Warn().Err(err).Msg("stats snapshot save failed")
		}
	}
}

// CreateSinglePlayerGame starts a solo session; it is active immediately.
func (s *Service) CreateSinglePlayerGame(ctx context.Context, playerName string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := &Player{
		ID:                  "player1",
		Name:                playerName,
		CompletedCategories: []bank.Category{},
	}
	s.state = &State{
		ID:          fmt.Sprintf("solo_%d", s.now().UnixMilli()),
		Status:      StatusActive,
		CurrentTurn: player.ID,
		Players:     []*Player{player},
		Mode:        ModeSingle,
	}
	s.stats = Stats{}
	s.save(ctx)
	return s.state
}

// CreateMultiplayerGame starts a session in waiting with only the host.
func (s *Service) CreateMultiplayerGame(ctx context.Context, hostName, gameCode string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	host := &Player{
		ID:                  "host",
		Name:                hostName,
		CompletedCategories: []bank.Category{},
		IsHost:              true,
	}
	s.state = &State{
		ID:          gameCode,
		Status:      StatusWaiting,
		CurrentTurn: host.ID,
		Players:     []*Player{host},
		Mode:        ModeMultiplayer,
	}
	s.stats = Stats{}
	s.save(ctx)
	return s.state
}

// JoinMultiplayerGame adds the second player to a waiting game with the
// matching code and activates it. Returns nil when no such game exists;
// the caller is expected to create one instead.
func (s *Service) JoinMultiplayerGame(ctx context.Context, playerName, gameCode string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil || s.state.ID != gameCode || s.state.Status != StatusWaiting {
		return nil
	}
	player := &Player{
		ID:                  "player2",
		Name:                playerName,
		CompletedCategories: []bank.Category{},
	}
	s.state.Players = append(s.state.Players, player)
	s.state.Status = StatusActive
	s.save(ctx)
	return s.state
}

// CurrentPlayer returns the player whose turn it is, or nil.
func (s *Service) CurrentPlayer() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPlayer()
}

func (s *Service) currentPlayer() *Player {
	if s.state == nil {
		return nil
	}
	for _, player := range s.state.Players {
		if player.ID == s.state.CurrentTurn {
			return player
		}
	}
	return nil
}

// NextQuestion draws the next question for the current player. With no
// explicit category it picks uniformly among the player's incomplete
// categories; nil when all six are complete or the bank is dry.
func (s *Service) NextQuestion(ctx context.Context, category bank.Category) (*bank.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil, nil
	}
	player := s.currentPlayer()
	if player == nil {
		return nil, nil
	}

	selected := category
	if selected == "" {
		var incomplete []bank.Category
		for _, c := range bank.Categories {
			if !player.HasCompleted(c) {
				incomplete = append(incomplete, c)
			}
		}
		if len(incomplete) == 0 {
			return nil, nil
		}
		selected = incomplete[s.rng.Intn(len(incomplete))]
	}

	s.state.CurrentCategory = selected
	question, err := s.bank.GetNextQuestion(ctx, selected)
	if err != nil {
		return nil, err
	}
	if question != nil {
		s.state.CurrentQuestion = question
		s.questionOpen = s.now()
		s.save(ctx)
	}
	return question, nil
}

// AnswerQuestion scores the current question against answerIndex. A
// session with no current question or player yields a safe no-op result
// rather than an error, keeping callers resilient.
func (s *Service) AnswerQuestion(ctx context.Context, answerIndex int) AnswerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil || s.state.CurrentQuestion == nil {
		return AnswerResult{Quip: "No question to answer!"}
	}
	player := s.currentPlayer()
	if player == nil {
		return AnswerResult{Quip: "No player found!"}
	}

	question := s.state.CurrentQuestion
	correct := answerIndex == question.AnswerIndex
	s.stats.TotalQuestions++

	openAt := s.questionOpen
	if openAt.IsZero() {
		openAt = s.now()
	}
	breakdown := scoring.ScoreRound(scoring.RoundArgs{
		Correct:     correct,
		AnsweredAt:  s.now(),
		OpenAt:      openAt,
		RoundEndsAt: openAt.Add(roundDuration),
		PrevStreak:  player.Streak,
	})
	player.Streak = breakdown.NextStreak
	player.Score += breakdown.Delta

	if correct {
		s.stats.CorrectAnswers++

		if s.state.CurrentCategory != "" && !player.HasCompleted(s.state.CurrentCategory) {
			player.CompletedCategories = append(player.CompletedCategories, s.state.CurrentCategory)
			s.stats.CategoriesCompleted++
		}
		if player.Streak > s.stats.LongestStreak {
			s.stats.LongestStreak = player.Streak
		}
		if len(player.CompletedCategories) == categoriesToWin {
			s.state.Status = StatusCompleted
			s.state.Winner = player.ID
		}

		s.save(ctx)
		return AnswerResult{Correct: true, Quip: question.CorrectQuip}
	}

	if s.state.Mode == ModeMultiplayer {
		s.switchTurns()
	}
	s.save(ctx)

	quip, ok := question.WrongQuips[strconv.Itoa(answerIndex)]
	if !ok || quip == "" {
		quip = "Wrong! Try harder next time."
	}
	return AnswerResult{Correct: false, Quip: quip}
}

func (s *Service) switchTurns() {
	if s.state == nil || s.state.Mode == ModeSingle {
		return
	}
	for i, player := range s.state.Players {
		if player.ID == s.state.CurrentTurn {
			next := s.state.Players[(i+1)%len(s.state.Players)]
			s.state.CurrentTurn = next.ID
			return
		}
	}
}

// CanChooseCategory reports whether the current player has earned the
// pick-your-category privilege.
func (s *Service) CanChooseCategory() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player := s.currentPlayer()
	return player != nil && player.Streak >= categoryPickStreak
}

// GameState returns a copy of the session state, or nil before a game
// starts. Copying keeps readers independent of in-flight mutations.
func (s *Service) GameState() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// GameStats returns a snapshot with accuracy recomputed on read.
func (s *Service) GameStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	if stats.TotalQuestions > 0 {
		stats.Accuracy = int(math.Round(float64(stats.CorrectAnswers) / float64(stats.TotalQuestions) * 100))
	}
	return stats
}

// ResetGame clears the session, stats, bank pools, and persisted
// snapshots.
func (s *Service) ResetGame(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	s.stats = Stats{}
	s.questionOpen = time.Time{}
	s.bank.Reset()
	if err := s.snapshots.Remove(ctx, stateKey); err != nil {
		s.logger.Warn().Err(err).Msg("state snapshot remove failed")
	}
	if err := s.snapshots.Remove(ctx, statsKey); err != nil {
		s.logger.Warn().Err(err).Msg("stats snapshot remove failed")
	}
}
