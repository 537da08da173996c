package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// maxRecommendations caps the recommendation list of a report
const maxRecommendations = 15

type scoredQuestion struct {
	question *model.Question
	points   int
}

type categoryTally struct {
	title        string
	score        int
	possible     int
	percentage   float64
	riskLevel    types.RiskLevel
	answered     []scoredQuestion
	distribution model.AnswerDistribution
}

func newDistribution() model.AnswerDistribution {
	dist := make(model.AnswerDistribution, 4)
	for _, l := range types.AllScoringLabels() {
		dist[l] = 0
	}
	return dist
}

func percentOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// ScoreAnswers scores an answer sheet against a template. Answers are keyed
// by question title; titles not in the template are ignored and an empty
// label means unanswered. Unknown labels fail with ErrInvalidInput.
func ScoreAnswers(tmpl *model.AssessmentTemplate, id types.AssessmentID, answers model.AnswerSheet, now time.Time) (*model.AssessmentReport, error) {
	for title, label := range answers {
		if label != "" && !label.IsValid() {
			return nil, goerr.Wrap(ErrInvalidInput, "unknown scoring label",
				goerr.V("question", title), goerr.V("label", label))
		}
	}

	overall := newDistribution()
	var (
		tallies       []*categoryTally
		totalScore    int
		totalPossible int
		answered      int
	)

	for ci := range tmpl.Categories {
		c := &tmpl.Categories[ci]
		tally := &categoryTally{
			title:        c.Title,
			distribution: newDistribution(),
		}

		for qi := range c.Questions {
			q := &c.Questions[qi]
			label, ok := answers[q.Title]
			if !ok || label == "" {
				continue
			}

			points := label.Points()
			tally.score += points
			tally.possible += types.PossiblePointsPerQuestion
			tally.answered = append(tally.answered, scoredQuestion{question: q, points: points})
			tally.distribution[label]++
			overall[label]++
		}

		if tally.possible > 0 {
			tally.percentage = float64(tally.score) / float64(tally.possible) * 100
		}
		tally.riskLevel = types.RiskLevelFromPercentage(tally.percentage)

		totalScore += tally.score
		totalPossible += tally.possible
		answered += len(tally.answered)
		tallies = append(tallies, tally)
	}

	overallScore := percentOf(totalScore, totalPossible)
	recs := buildRecommendations(tallies)

	report := &model.AssessmentReport{
		AssessmentInfo: model.AssessmentInfo{
			Title:          tmpl.Title,
			Description:    tmpl.Description,
			AssessmentDate: now,
			AssessmentID:   id,
		},
		Summary: model.ReportSummary{
			OverallScore:      overallScore,
			RiskLevel:         types.RiskLevelFromPercentage(float64(overallScore)),
			CompletionRate:    percentOf(answered, tmpl.QuestionCount()),
			TotalQuestions:    tmpl.QuestionCount(),
			AnsweredQuestions: answered,
			Categories:        len(tallies),
		},
		AnswerDistribution: overall,
		CategoryBreakdown:  make([]model.CategoryScore, 0, len(tallies)),
		NextSteps:          buildNextSteps(overallScore),
		RiskAnalysis:       buildRiskAnalysis(tallies, recs),
	}

	for _, t := range tallies {
		report.CategoryBreakdown = append(report.CategoryBreakdown, model.CategoryScore{
			Title:              t.title,
			Score:              percentOf(t.score, t.possible),
			RiskLevel:          t.riskLevel,
			QuestionsAnswered:  len(t.answered),
			AnswerDistribution: t.distribution,
		})
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	report.Recommendations = recs

	return report, nil
}

// buildRecommendations returns every recommendation, High priority first
func buildRecommendations(tallies []*categoryTally) []model.Recommendation {
	recs := []model.Recommendation{}
	for _, t := range tallies {
		if !t.riskLevel.NeedsRemediation() {
			continue
		}
		for _, sq := range t.answered {
			if sq.points > 2 {
				continue
			}
			priority := types.PriorityMedium
			if sq.points == 1 {
				priority = types.PriorityHigh
			}
			recs = append(recs, model.Recommendation{
				Category:    t.title,
				Issue:       sq.question.Title,
				Remediation: sq.question.RemediationTips,
				Priority:    priority,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs
}

func buildNextSteps(overallScore int) []model.NextStep {
	var steps []model.NextStep
	if overallScore < 50 {
		steps = append(steps, model.NextStep{
			Priority:    types.PriorityImmediate,
			Action:      "Focus on high-risk areas first",
			Description: "Address critical vulnerabilities and compliance gaps immediately",
		})
	}
	if overallScore < 75 {
		steps = append(steps, model.NextStep{
			Priority:    types.PriorityHigh,
			Action:      "Develop comprehensive remediation plan",
			Description: "Create detailed action plan with timelines and resource allocation",
		})
	}

	return append(steps,
		model.NextStep{
			Priority:    types.PriorityMedium,
			Action:      "Schedule follow-up assessment",
			Description: "Plan reassessment in 3-6 months to measure progress",
		},
		model.NextStep{
			Priority:    types.PriorityMedium,
			Action:      "Implement continuous monitoring",
			Description: "Establish ongoing compliance monitoring and improvement processes",
		},
	)
}

func buildRiskAnalysis(tallies []*categoryTally, recs []model.Recommendation) model.RiskAnalysis {
	var ra model.RiskAnalysis
	for _, t := range tallies {
		switch t.riskLevel {
		case types.RiskLevelHigh:
			ra.HighRiskAreas++
		case types.RiskLevelMedium:
			ra.MediumRiskAreas++
		default:
			ra.LowRiskAreas++
		}
	}
	for _, r := range recs {
		if r.Priority == types.PriorityHigh {
			ra.CriticalIssues++
		}
	}
	ra.ComplianceGaps = len(recs)
	return ra
}
