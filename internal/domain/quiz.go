package domain

import "time"

// QuizID addresses the singleton quiz document
const QuizID = "quiz_config"

// QuizOption maps one answer to weights per island id
type QuizOption struct {
	Text          string         `json:"text" bson:"text" validate:"required"`
	IslandWeights map[string]int `json:"island_weights" bson:"island_weights" validate:"required"`
}

type QuizQuestion struct {
	ID       string       `json:"id" bson:"id"`
	Question string       `json:"question" bson:"question" validate:"required"`
	Options  []QuizOption `json:"options" bson:"options" validate:"required,dive"`
}

type Quiz struct {
	ID        string         `json:"id" bson:"id"`
	Questions []QuizQuestion `json:"questions" bson:"questions"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// QuizResult is the recommendation returned for a submission
type QuizResult struct {
	Island   *Island    `json:"island"`
	Products []*Product `json:"products"`
}
