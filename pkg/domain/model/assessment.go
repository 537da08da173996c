package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// AssessmentDocument is the on-disk envelope of an assessment template
type AssessmentDocument struct {
	Template AssessmentTemplate `json:"assessment_template_create_payload"`
}

// AssessmentTemplate is a questionnaire: ordered categories of questions
type AssessmentTemplate struct {
	Title                             string               `json:"title"`
	Description                       string               `json:"description"`
	IsCategoryWeightEvenlyDistributed bool                 `json:"is_category_weight_evenly_distributed"`
	Categories                        []AssessmentCategory `json:"categories"`
}

// AssessmentCategory groups questions under a title
type AssessmentCategory struct {
	Title                             string     `json:"title"`
	Description                       string     `json:"description"`
	IsQuestionWeightEvenlyDistributed bool       `json:"is_question_weight_evenly_distributed"`
	Questions                         []Question `json:"questions"`
}

// Question is a single assessment item. Answers are keyed by Title.
type Question struct {
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	RemediationTips     string      `json:"remediation_tips"`
	CriterionLabelType  string      `json:"criterion_label_type_enum"`
	Criteria            []Criterion `json:"criteria"`
	ScoringInstructions string      `json:"scoring_instructions"`
}

// Criterion describes what a scoring label means for a question
type Criterion struct {
	Label       types.ScoringLabel `json:"label_enum"`
	Description string             `json:"description"`
}

// QuestionCount returns the number of questions across all categories
func (t *AssessmentTemplate) QuestionCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Questions)
	}
	return n
}

// Validate checks structural consistency of the template
func (t *AssessmentTemplate) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return goerr.New("assessment title is required")
	}
	for ci, c := range t.Categories {
		if strings.TrimSpace(c.Title) == "" {
			return goerr.New("category title is required", goerr.V("category_index", ci))
		}
		for qi, q := range c.Questions {
			if strings.TrimSpace(q.Title) == "" {
				return goerr.New("question title is required",
					goerr.V("category", c.Title), goerr.V("question_index", qi))
			}
			for _, cr := range q.Criteria {
				if !cr.Label.IsValid() {
					return goerr.New("invalid criterion label",
						goerr.V("question", q.Title), goerr.V("label", cr.Label))
				}
			}
		}
	}
	return nil
}

// AssessmentConfig is one entry of the assessment config index
type AssessmentConfig struct {
	Aliases                []string `json:"aliases"`
	JSONFile               string   `json:"json_file"`
	RecommendationFunction string   `json:"recommendation_function"`
	LastUpdated            int64    `json:"lastUpdated,omitempty"`
	Titles                 []string `json:"titles"`
	Keywords               []string `json:"keywords"`
	Description            string   `json:"description"`
}

// AssessmentConfigIndex is the assessment-configs.json document
type AssessmentConfigIndex struct {
	AssessmentTypes map[types.AssessmentID]*AssessmentConfig `json:"assessment_types"`
}

// NewAssessmentConfigIndex returns an empty index
func NewAssessmentConfigIndex() *AssessmentConfigIndex {
	return &AssessmentConfigIndex{AssessmentTypes: make(map[types.AssessmentID]*AssessmentConfig)}
}

// AssessmentCard is the catalog entry returned by the list endpoint
type AssessmentCard struct {
	ID               types.AssessmentID `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Icon             string             `json:"icon"`
	Gradient         string             `json:"gradient"`
	Status           string             `json:"status"`
	LastUpdated      int64              `json:"lastUpdated"`
	RunAssessmentURL string             `json:"runAssessmentUrl"`
	ViewReportURL    string             `json:"viewReportUrl"`
	DownloadJSONURL  string             `json:"downloadJsonUrl"`
	Aliases          []string           `json:"aliases"`
	Keywords         []string           `json:"keywords"`
	CategoryTitles   []string           `json:"categoryTitles"`
}

// AssessmentFileName returns the template file name for an assessment ID
func AssessmentFileName(id types.AssessmentID) string {
	return "assessment-" + string(id) + "-data.json"
}

var defaultCategoryTitles = []string{
	"Strategic Initiative",
	"Operational Excellence",
	"Performance Optimization",
	"Capability Enhancement",
	"Continuous Improvement",
}

// NewAssessmentSkeleton builds the starter template written by AddAssessment
func NewAssessmentSkeleton(name string) *AssessmentDocument {
	title := TitleCase(name)
	return &AssessmentDocument{
		Template: AssessmentTemplate{
			Title:                             title,
			Description:                       "Comprehensive " + strings.ToLower(name) + " evaluation and analysis.",
			IsCategoryWeightEvenlyDistributed: true,
			Categories: []AssessmentCategory{
				{
					Title:                             "Category 1",
					Description:                       "First category description",
					IsQuestionWeightEvenlyDistributed: true,
					Questions: []Question{
						{
							Title:              "Sample Question",
							Description:        "This is a sample question for your assessment.",
							RemediationTips:    "Add remediation tips here for this question.",
							CriterionLabelType: "MultiResponse",
							Criteria: []Criterion{
								{Label: types.ScoringLabelAtRisk, Description: "At risk description"},
								{Label: types.ScoringLabelNeedsAttention, Description: "Needs attention description"},
								{Label: types.ScoringLabelSatisfactory, Description: "Satisfactory description"},
								{Label: types.ScoringLabelNotApplicable, Description: "Not applicable"},
							},
							ScoringInstructions: "Instructions for scoring this question.",
						},
					},
				},
			},
		},
	}
}

// NewAssessmentConfig builds the index entry registered by AddAssessment
func NewAssessmentConfig(id types.AssessmentID, name string, now time.Time) *AssessmentConfig {
	titles := make([]string, len(defaultCategoryTitles))
	copy(titles, defaultCategoryTitles)

	return &AssessmentConfig{
		Aliases:                []string{string(id)},
		JSONFile:               AssessmentFileName(id),
		RecommendationFunction: "generate_ai_recommendations",
		LastUpdated:            now.Unix(),
		Titles:                 titles,
		Keywords:               []string{strings.ReplaceAll(string(id), "-", " ")},
		Description:            TitleCase(name) + " assessment",
	}
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
