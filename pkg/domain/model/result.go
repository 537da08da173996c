package model

import (
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// AnswerSheet maps question titles to the label chosen for them
type AnswerSheet map[string]types.ScoringLabel

// AssessmentInfo identifies the assessment a report was computed for
type AssessmentInfo struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	AssessmentDate time.Time          `json:"assessmentDate"`
	AssessmentID   types.AssessmentID `json:"assessmentId"`
}

// ReportSummary holds the headline numbers of a scored assessment
type ReportSummary struct {
	OverallScore      int             `json:"overallScore"`
	RiskLevel         types.RiskLevel `json:"riskLevel"`
	CompletionRate    int             `json:"completionRate"`
	TotalQuestions    int             `json:"totalQuestions"`
	AnsweredQuestions int             `json:"answeredQuestions"`
	Categories        int             `json:"categories"`
}

// AnswerDistribution counts answers per scoring label
type AnswerDistribution map[types.ScoringLabel]int

// CategoryScore is the per-category section of a report
type CategoryScore struct {
	Title              string             `json:"title"`
	Score              int                `json:"score"`
	RiskLevel          types.RiskLevel    `json:"riskLevel"`
	QuestionsAnswered  int                `json:"questionsAnswered"`
	AnswerDistribution AnswerDistribution `json:"answerDistribution"`
}

// Recommendation is a remediation item derived from a low-scoring answer
type Recommendation struct {
	Category    string         `json:"category"`
	Issue       string         `json:"issue"`
	Remediation string         `json:"remediation"`
	Priority    types.Priority `json:"priority"`
}

// NextStep is a follow-up action suggested by the overall score
type NextStep struct {
	Priority    types.Priority `json:"priority"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
}

// RiskAnalysis aggregates category risk levels and recommendation counts
type RiskAnalysis struct {
	HighRiskAreas   int `json:"highRiskAreas"`
	MediumRiskAreas int `json:"mediumRiskAreas"`
	LowRiskAreas    int `json:"lowRiskAreas"`
	CriticalIssues  int `json:"criticalIssues"`
	ComplianceGaps  int `json:"complianceGaps"`
}

// AssessmentReport is the scored output of an answer sheet
type AssessmentReport struct {
	AssessmentInfo     AssessmentInfo     `json:"assessmentInfo"`
	Summary            ReportSummary      `json:"summary"`
	AnswerDistribution AnswerDistribution `json:"answerDistribution"`
	CategoryBreakdown  []CategoryScore    `json:"categoryBreakdown"`
	Recommendations    []Recommendation   `json:"recommendations"`
	NextSteps          []NextStep         `json:"nextSteps"`
	RiskAnalysis       RiskAnalysis       `json:"riskAnalysis"`
}

// AssessmentResult is a persisted submission
type AssessmentResult struct {
	ID           types.ResultID     `json:"id"`
	AssessmentID types.AssessmentID `json:"assessmentId"`
	Answers      AnswerSheet        `json:"answers"`
	Report       *AssessmentReport  `json:"report"`
	CreatedAt    time.Time          `json:"createdAt"`
}
