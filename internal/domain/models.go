package domain

import (
	"strings"
	"time"
)

// Account is a registered learner or administrator.
type Account struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DirectionID  string    `json:"direction"`
	Phone        string    `json:"phone"`
	Telegram     string    `json:"telegram"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"password"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName joins first and last name for listings.
func (a Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AccountView is an account as returned over the API: never carries the password hash.
type AccountView struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DirectionID   string    `json:"direction"`
	DirectionName string    `json:"directionName"`
	Phone         string    `json:"phone"`
	Telegram      string    `json:"telegram"`
	Login         string    `json:"login"`
	IsAdmin       bool      `json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
}

// View drops the password hash and attaches the direction label.
func (a Account) View(directionName string) AccountView {
	return AccountView{
		ID:            a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		DirectionID:   a.DirectionID,
		DirectionName: directionName,
		Phone:         a.Phone,
		Telegram:      a.Telegram,
		Login:         a.Login,
		IsAdmin:       a.IsAdmin,
		CreatedAt:     a.CreatedAt,
	}
}

// Direction is a track (subject area) that scopes tests and accounts.
type Direction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Question is a single-choice question; Correct is the index of the right option.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// TestDefinition is a test bound to a direction.
type TestDefinition struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	DirectionID   string     `json:"direction"`
	DirectionName string     `json:"directionName"`
	TimeLimit     int        `json:"timeLimit"` // minutes
	Attempts      int        `json:"attempts"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// LearnerQuestion is a question as shown to a learner: the correct option is never included.
type LearnerQuestion struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// LearnerTest is the answering view of a test.
type LearnerTest struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	DirectionID   string            `json:"direction"`
	DirectionName string            `json:"directionName"`
	TimeLimit     int               `json:"timeLimit"`
	Questions     []LearnerQuestion `json:"questions"`
}

// ForLearner strips the correct-option markers.
func (t TestDefinition) ForLearner() LearnerTest {
	questions := make([]LearnerQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions = append(questions, LearnerQuestion{ID: q.ID, Prompt: q.Prompt, Options: options})
	}
	return LearnerTest{
		ID:            t.ID,
		Title:         t.Title,
		DirectionID:   t.DirectionID,
		DirectionName: t.DirectionName,
		TimeLimit:     t.TimeLimit,
		Questions:     questions,
	}
}

// TestSummary is a list entry for a learner's test catalog.
type TestSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DirectionID   string    `json:"direction"`
	DirectionName string    `json:"directionName"`
	TimeLimit     int       `json:"timeLimit"`
	Attempts      int       `json:"attempts"`
	QuestionCount int       `json:"questionCount"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// QuestionOutcome records how one question was answered.
type QuestionOutcome struct {
	QuestionID    int  `json:"questionId"`
	UserAnswer    *int `json:"userAnswer"`
	CorrectAnswer int  `json:"correctAnswer"`
	IsCorrect     bool `json:"isCorrect"`
}

// SubmissionResult is the immutable outcome of one account's single attempt at a test.
type SubmissionResult struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"userId"`
	TestID         string            `json:"testId"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	Percentage     int               `json:"percentage"`
	TimeSpent      int               `json:"timeSpent"` // seconds
	Answers        []QuestionOutcome `json:"answers"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ScoreSummary is returned to the learner after a submission.
type ScoreSummary struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
}

// ResultView joins a result with display labels.
type ResultView struct {
	SubmissionResult
	TestTitle string `json:"testTitle"`
	UserName  string `json:"userName,omitempty"`
}

// VerificationEntry is a short-lived code issued to a Telegram identity.
type VerificationEntry struct {
	Telegram  string    `json:"telegram"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TestStatistics aggregates submissions of one test.
type TestStatistics struct {
	TestID            string `json:"testId"`
	Title             string `json:"title"`
	Submissions       int    `json:"submissions"`
	AveragePercentage int    `json:"averagePercentage"`
}

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalUsers        int              `json:"totalUsers"`
	TotalDirections   int              `json:"totalDirections"`
	TotalTests        int              `json:"totalTests"`
	TotalResults      int              `json:"totalResults"`
	AveragePercentage int              `json:"averagePercentage"`
	Tests             []TestStatistics `json:"tests"`
}

// NormalizeTelegram canonicalizes a Telegram handle: "@Alice " and "alice" are the same identity.
func NormalizeTelegram(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
