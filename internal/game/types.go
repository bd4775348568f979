package game

import (
	"github.com/dustinbroussard/trivia-sass-attack/internal/bank"
)

// Status is the session lifecycle state. Transitions only move forward:
// waiting -> active -> completed (single-player starts at active).
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Mode distinguishes solo play from hot-seat multiplayer.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeMultiplayer Mode = "multiplayer"
)

// Player is one participant in a session.
type Player struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	CompletedCategories []bank.Category `json:"completedCategories"`
	Streak              int             `json:"streak"`
	Score               int             `json:"score"`
	IsHost              bool            `json:"isHost,omitempty"`
}

// HasCompleted reports whether the player already finished the category.
func (p *Player) HasCompleted(category bank.Category) bool {
	for _, done := range p.CompletedCategories {
		if done == category {
			return true
		}
	}
	return false
}

// State is the per-session game state snapshot.
type State struct {
	ID              string         `json:"id"`
	Status          Status         `json:"status"`
	CurrentTurn     string         `json:"currentTurn"`
	Players         []*Player      `json:"players"`
	Winner          string         `json:"winner,omitempty"`
	Mode            Mode           `json:"gameMode"`
	CurrentCategory bank.Category  `json:"currentCategory,omitempty"`
	CurrentQuestion *bank.Question `json:"currentQuestion,omitempty"`
}

// clone deep-copies the mutable session fields so callers never share
// memory with the live state.
func (st *State) clone() *State {
	if st == nil {
		return nil
	}
	out := *st
	out.Players = make([]*Player, len(st.Players))
	for i, p := range st.Players {
		cp := *p
		cp.CompletedCategories = append([]bank.Category(nil), p.CompletedCategories...)
		out.Players[i] = &cp
	}
	if st.CurrentQuestion != nil {
		q := *st.CurrentQuestion
		out.CurrentQuestion = &q
	}
	return &out
}

// Stats accumulate monotonically over a session; accuracy is derived on
// read. Only the session service mutates these.
type Stats struct {
	TotalQuestions      int   `json:"totalQuestions"`
	CorrectAnswers      int   `json:"correctAnswers"`
	Accuracy            int   `json:"accuracy"`
	LongestStreak       int   `json:"longestStreak"`
	CategoriesCompleted int   `json:"categoriesCompleted"`
	SessionTime         int64 `json:"sessionTime"`
}

// AnswerResult is what the presentation layer shows after an answer.
type AnswerResult struct {
	Correct bool   `json:"correct"`
	Quip    string `json:"quip"`
}

// categoriesToWin is how many distinct categories a player must complete.
const categoriesToWin = 6
