package session

import "quiz-backend/internal/models"

// Data is the JSON document stored per session.
type Data struct {
	QuestionID *int64            `json:"question_id,omitempty"`
	Score      int               `json:"score,omitempty"`
	UserData   models.UserClaims `json:"user_data,omitempty"`
}

// Session belongs to exactly one client and is only written by that
// client's own sequential requests.
type Session struct {
	ID    string
	Data  Data
	isNew bool
}

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) QuizState() models.QuizState {
	return models.QuizState{QuestionID: s.Data.QuestionID, Score: s.Data.Score}
}

func (s *Session) SetQuizState(state models.QuizState) {
	s.Data.QuestionID = state.QuestionID
	s.Data.Score = state.Score
}

func (s *Session) User() (models.UserClaims, bool) {
	return s.Data.UserData, len(s.Data.UserData) > 0
}

func (s *Session) SetUser(claims models.UserClaims) {
	s.Data.UserData = claims
}

// ClearUser removes the signed-in user. It is a no-op when nobody is signed in.
func (s *Session) ClearUser() {
	s.Data.UserData = nil
}
