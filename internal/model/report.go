package model

// ScoreBreakdown is the derived scoring artifact for one attempt. It is
// computed once from the frozen question and answer sets and never mutated.
type ScoreBreakdown struct {
	TotalScore        float64                  `json:"total_score"`
	MaxPossible       float64                  `json:"max_possible"`
	OverallPercentage float64                  `json:"overall_percentage"`
	SectionScores     map[QuestionType]float64 `json:"section_scores"`
	SkillScores       map[string]float64       `json:"skill_scores"`
	IsPassed          bool                     `json:"is_passed"`
}

// CheatFlags are advisory signals. They never block submission or alter
// scores; Warnings records collaborators that were unavailable.
type CheatFlags struct {
	TimeAnomaly   bool     `json:"time_anomaly"`
	AnswerPattern bool     `json:"answer_pattern"`
	Plagiarism    bool     `json:"plagiarism"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Report is the final candidate-facing artifact for a submitted attempt.
type Report struct {
	Scores          ScoreBreakdown `json:"scores"`
	Flags           CheatFlags     `json:"flags"`
	TimeTakenSec    float64        `json:"time_taken_sec"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	Recommendations []string       `json:"recommendations"`
}
