package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Interview is one mock-interview session owned by a candidate
type Interview struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;index" json:"userId"`
	Name            string    `gorm:"not null" json:"name"`
	Type            string    `gorm:"size:100" json:"type"`
	Role            string    `gorm:"size:255" json:"role"`
	TechStack       []string  `gorm:"type:text;serializer:json" json:"techStack"`
	Experience      string    `gorm:"size:100" json:"experience"`
	DifficultyLevel string    `gorm:"size:50" json:"difficultyLevel"`
	NoOfQuestions   int       `gorm:"not null" json:"noOfQuestions"`
	IsCompleted     bool      `gorm:"not null;default:false;index" json:"isCompleted"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Feedback *Feedback `gorm:"foreignKey:InterviewID" json:"feedBack,omitempty"`
}

func (i *Interview) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// ScoreSet holds the six 1..100 sub-scores produced by an evaluation
type ScoreSet struct {
	ProblemSolving      int `gorm:"not null" json:"problemSolving"`
	SystemDesign        int `gorm:"not null" json:"systemDesign"`
	CommunicationSkills int `gorm:"not null" json:"communicationSkills"`
	TechnicalAccuracy   int `gorm:"not null" json:"technicalAccuracy"`
	BehavioralResponses int `gorm:"not null" json:"behavioralResponses"`
	TimeManagement      int `gorm:"not null" json:"timeManagement"`
}

// SkillKeys lists the score fields in their canonical order
var SkillKeys = []string{
	"problemSolving",
	"systemDesign",
	"communicationSkills",
	"technicalAccuracy",
	"behavioralResponses",
	"timeManagement",
}

// Values returns the scores in SkillKeys order
func (s ScoreSet) Values() []int {
	return []int{
		s.ProblemSolving,
		s.SystemDesign,
		s.CommunicationSkills,
		s.TechnicalAccuracy,
		s.BehavioralResponses,
		s.TimeManagement,
	}
}

func (s ScoreSet) Sum() int {
	total := 0
	for _, v := range s.Values() {
		total += v
	}
	return total
}

// Feedback is the AI evaluation attached to a completed interview
type Feedback struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	InterviewID string `gorm:"type:uuid;not null;uniqueIndex" json:"interviewId"`
	UserID      string `gorm:"type:uuid;not null;index" json:"userId"`
	ScoreSet
	FeedBack  datatypes.JSONType[FeedbackReport] `json:"feedBack"`
	CreatedAt time.Time                          `json:"createdAt"`

	// Relationships
	Interview *Interview `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Report returns the decoded feedback blob
func (f *Feedback) Report() FeedbackReport {
	return f.FeedBack.Data()
}

// FeedbackReport is the JSON blob persisted in Feedback.FeedBack
type FeedbackReport struct {
	Summary    string         `json:"summary"`
	Transcript []SavedMessage `json:"transcript"`
	WeakTopics []WeakTopic    `json:"weakTopics"`
}

// WeakTopic is a skill gap with one learning resource attached
type WeakTopic struct {
	Topic         string `json:"topic" validate:"required"`
	ResourceType  string `json:"resourceType" validate:"required,oneof=video article docs"`
	ResourceTitle string `json:"resourceTitle" validate:"required"`
	ResourceURL   string `json:"resourceUrl" validate:"required,url"`
}
