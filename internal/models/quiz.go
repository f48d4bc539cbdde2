package models

import "time"

// Quiz is a topic: a named, ordered collection of questions.
type Quiz struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type QuizWithCount struct {
	Quiz
	QuestionsCount int `json:"questions_count"`
}

type Question struct {
	ID     int64  `json:"id"`
	QuizID int64  `json:"quiz_id"`
	Text   string `json:"text"`
}

type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionWithAnswers is what Start and Advance hand back to the caller.
type QuestionWithAnswers struct {
	Question Question `json:"question"`
	Answers  []Answer `json:"answers"`
}

// AnswerFeedback pairs the submitted answer with the correct one for the
// same question. Both are the same answer when the submission was correct.
type AnswerFeedback struct {
	Submitted Answer `json:"submitted_answer"`
	Correct   Answer `json:"answer"`
}

func (f AnswerFeedback) IsCorrect() bool {
	return f.Submitted.IsCorrect
}

type FinishSummary struct {
	QuizID         int64 `json:"quiz_id"`
	QuestionsCount int   `json:"questions_count"`
	Score          int   `json:"score"`
	PercentScore   int   `json:"percent_score"`
}

// QuizState is the progression state of one client. A nil QuestionID means
// no quiz is in progress.
type QuizState struct {
	QuestionID *int64 `json:"question_id,omitempty"`
	Score      int    `json:"score,omitempty"`
}

func (s QuizState) Active() bool {
	return s.QuestionID != nil
}

// NewQuestionInput is used when writing questions to the store.
type NewQuestionInput struct {
	Text    string           `json:"text"`
	Answers []NewAnswerInput `json:"answers"`
}

type NewAnswerInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type NewQuizInput struct {
	Name      string             `json:"name"`
	Questions []NewQuestionInput `json:"questions"`
}
