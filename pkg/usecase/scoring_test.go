package usecase_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/usecase"
)

func question(title string) model.Question {
	return model.Question{
		Title:           title,
		RemediationTips: "fix " + title,
	}
}

func scoringTemplate() *model.AssessmentTemplate {
	return &model.AssessmentTemplate{
		Title:       "Cyber Resilience",
		Description: "Resilience review",
		Categories: []model.AssessmentCategory{
			{Title: "Backups", Questions: []model.Question{question("q1"), question("q2")}},
			{Title: "Identity", Questions: []model.Question{question("q3"), question("q4"), question("q5")}},
		},
	}
}

func TestScoreAnswers(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	answers := model.AnswerSheet{
		"q1":      types.ScoringLabelAtRisk,
		"q2":      types.ScoringLabelNeedsAttention,
		"q3":      types.ScoringLabelSatisfactory,
		"q4":      types.ScoringLabelSatisfactory,
		"unknown": types.ScoringLabelAtRisk,
	}

	report, err := usecase.ScoreAnswers(scoringTemplate(), "cyber-resilience", answers, now)
	gt.NoError(t, err).Required()

	t.Run("summary", func(t *testing.T) {
		gt.Value(t, report.Summary).Equal(model.ReportSummary{
			OverallScore:      56,
			RiskLevel:         types.RiskLevelMedium,
			CompletionRate:    80,
			TotalQuestions:    5,
			AnsweredQuestions: 4,
			Categories:        2,
		})
		gt.Value(t, report.AssessmentInfo.AssessmentDate).Equal(now)
		gt.Value(t, report.AssessmentInfo.AssessmentID).Equal(types.AssessmentID("cyber-resilience"))
	})

	t.Run("categories", func(t *testing.T) {
		gt.Array(t, report.CategoryBreakdown).Length(2)
		gt.Value(t, report.CategoryBreakdown[0].Score).Equal(38)
		gt.Value(t, report.CategoryBreakdown[0].RiskLevel).Equal(types.RiskLevelHigh)
		gt.Value(t, report.CategoryBreakdown[1].Score).Equal(75)
		gt.Value(t, report.CategoryBreakdown[1].RiskLevel).Equal(types.RiskLevelLow)
		gt.Value(t, report.CategoryBreakdown[1].QuestionsAnswered).Equal(2)
	})

	t.Run("distribution counts only template questions", func(t *testing.T) {
		want := model.AnswerDistribution{
			types.ScoringLabelSatisfactory:   2,
			types.ScoringLabelNeedsAttention: 1,
			types.ScoringLabelAtRisk:         1,
			types.ScoringLabelNotApplicable:  0,
		}
		if diff := cmp.Diff(want, report.AnswerDistribution); diff != "" {
			t.Errorf("distribution mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("recommendations", func(t *testing.T) {
		want := []model.Recommendation{
			{Category: "Backups", Issue: "q1", Remediation: "fix q1", Priority: types.PriorityHigh},
			{Category: "Backups", Issue: "q2", Remediation: "fix q2", Priority: types.PriorityMedium},
		}
		if diff := cmp.Diff(want, report.Recommendations); diff != "" {
			t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("next steps and risk analysis", func(t *testing.T) {
		gt.Array(t, report.NextSteps).Length(3)
		gt.Value(t, report.NextSteps[0].Priority).Equal(types.PriorityHigh)
		gt.Value(t, report.RiskAnalysis).Equal(model.RiskAnalysis{
			HighRiskAreas:  1,
			LowRiskAreas:   1,
			CriticalIssues: 1,
			ComplianceGaps: 2,
		})
	})
}

func TestScoreAnswers_Empty(t *testing.T) {
	report, err := usecase.ScoreAnswers(scoringTemplate(), "x", model.AnswerSheet{}, time.Now())
	gt.NoError(t, err).Required()

	gt.Value(t, report.Summary.OverallScore).Equal(0)
	gt.Value(t, report.Summary.RiskLevel).Equal(types.RiskLevelHigh)
	gt.Value(t, report.Summary.CompletionRate).Equal(0)
	gt.Array(t, report.NextSteps).Length(4)
	gt.Value(t, report.NextSteps[0].Priority).Equal(types.PriorityImmediate)
	gt.Array(t, report.Recommendations).Length(0)
	gt.Value(t, report.RiskAnalysis.HighRiskAreas).Equal(2)
}

func TestScoreAnswers_CapsRecommendations(t *testing.T) {
	tmpl := &model.AssessmentTemplate{Title: "Big"}
	answers := model.AnswerSheet{}
	var qs []model.Question
	for i := range 20 {
		title := fmt.Sprintf("q%02d", i)
		qs = append(qs, question(title))
		if i%2 == 0 {
			answers[title] = types.ScoringLabelNeedsAttention
		} else {
			answers[title] = types.ScoringLabelAtRisk
		}
	}
	tmpl.Categories = []model.AssessmentCategory{{Title: "All", Questions: qs}}

	report, err := usecase.ScoreAnswers(tmpl, "big", answers, time.Now())
	gt.NoError(t, err).Required()

	gt.Array(t, report.Recommendations).Length(15)
	for i := range 10 {
		gt.Value(t, report.Recommendations[i].Priority).Equal(types.PriorityHigh)
	}
	gt.Value(t, report.Recommendations[10].Priority).Equal(types.PriorityMedium)
	gt.Value(t, report.RiskAnalysis.CriticalIssues).Equal(10)
	gt.Value(t, report.RiskAnalysis.ComplianceGaps).Equal(20)
}

func TestScoreAnswers_NotApplicableIsNeutral(t *testing.T) {
	tmpl := &model.AssessmentTemplate{
		Categories: []model.AssessmentCategory{{Title: "C", Questions: []model.Question{question("q")}}},
	}
	report, err := usecase.ScoreAnswers(tmpl, "na", model.AnswerSheet{"q": types.ScoringLabelNotApplicable}, time.Now())
	gt.NoError(t, err).Required()

	gt.Value(t, report.Summary.OverallScore).Equal(50)
	gt.Value(t, report.Summary.RiskLevel).Equal(types.RiskLevelMedium)
	gt.Array(t, report.Recommendations).Length(1)
	gt.Value(t, report.Recommendations[0].Priority).Equal(types.PriorityMedium)
}

func TestScoreAnswers_UnknownLabel(t *testing.T) {
	_, err := usecase.ScoreAnswers(scoringTemplate(), "x", model.AnswerSheet{"q1": "Great"}, time.Now())
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrInvalidInput)).True()
}
