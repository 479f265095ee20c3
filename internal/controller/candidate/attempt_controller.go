package candidate

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptController is the candidate-facing surface: start an attempt,
// record answers during the window, submit, and read back results.
type AttemptController struct {
	attemptService     service.AttemptService
	bankService        service.BankService
	leaderboardService service.LeaderboardService
}

func NewAttemptController(attemptService service.AttemptService, bankService service.BankService, leaderboardService service.LeaderboardService) *AttemptController {
	return &AttemptController{
		attemptService:     attemptService,
		bankService:        bankService,
		leaderboardService: leaderboardService,
	}
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := ctx.Param(param)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format"})
		return 0, false
	}
	return uint(val), true
}

// StartAttempt godoc
// @Summary (Candidate) Start an attempt
// @Description Generates and freezes the question set for a new attempt. Correct answers, hidden test case IO and rubric keywords are never included.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param request body dto.StartAttemptRequest true "Candidate identifier"
// @Success 201 {object} dto.StartAttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or insufficient questions in the bank"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments/{assessment_id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "assessment_id")
	if !ok {
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, questions, err := c.attemptService.StartAttempt(assessmentID, req.CandidateID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientQuestions) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Assessment not found"})
			return
		}
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Candidate StartAttempt: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start attempt", Details: []string{err.Error()}})
		return
	}

	assessment, err := c.bankService.GetAssessment(assessmentID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Candidate StartAttempt: failed to reload assessment")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start attempt", Details: []string{err.Error()}})
		return
	}

	resp := dto.StartAttemptResponse{
		AttemptID:   attempt.ID,
		StartedAt:   attempt.StartedAt,
		DurationSec: assessment.DurationSec,
	}
	for i := range questions {
		cq, err := dto.NewCandidateQuestion(&questions[i])
		if err != nil {
			log.Warn().Err(err).Uint("questionID", questions[i].ID).Msg("Candidate StartAttempt: skipping question with bad payload")
			continue
		}
		resp.Questions = append(resp.Questions, cq)
	}
	ctx.JSON(http.StatusCreated, resp)
}

// RecordAnswer godoc
// @Summary (Candidate) Record an answer
// @Description Records or revises an answer for one question. Writes after submission are accepted and silently dropped.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param answer body dto.RecordAnswerRequest true "Answer value (for mcq, the option index as a string)"
// @Success 204 "Answer recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid input or unknown question for this attempt"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/answers [put]
func (c *AttemptController) RecordAnswer(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.RecordAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	err := c.attemptService.RecordAnswer(attemptID, req.QuestionID, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrQuestionNotInAttempt):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Candidate RecordAnswer: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to record answer", Details: []string{err.Error()}})
		}
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitAttempt godoc
// @Summary (Candidate) Submit an attempt
// @Description Flips the submission latch and runs scoring, anti-cheat and report building. Submitting twice returns the stored report.
// @Tags Candidate - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ReportResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}

	report, err := c.attemptService.Finalize(ctx.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Candidate SubmitAttempt: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit attempt", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.ReportResponse{AttemptID: attemptID, Report: *report})
}

// GetReport godoc
// @Summary (Candidate) Get the report for a submitted attempt
// @Tags Candidate - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ReportResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not submitted yet"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/report [get]
func (c *AttemptController) GetReport(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}

	report, err := c.attemptService.GetReport(attemptID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrAttemptNotSubmitted):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Candidate GetReport: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load report", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, dto.ReportResponse{AttemptID: attemptID, Report: *report})
}

// GetMyAttempts godoc
// @Summary (Candidate) List attempts for an assessment
// @Tags Candidate - Attempts
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param candidate_id query string false "Candidate ID to filter by"
// @Success 200 {array} dto.AttemptSummary
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments/{assessment_id}/my-attempts [get]
func (c *AttemptController) GetMyAttempts(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "assessment_id")
	if !ok {
		return
	}
	candidateID := ctx.Query("candidate_id")

	attempts, err := c.attemptService.GetAttemptsFor(assessmentID, candidateID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Candidate GetMyAttempts: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list attempts", Details: []string{err.Error()}})
		return
	}

	summaries := make([]dto.AttemptSummary, 0, len(attempts))
	for i := range attempts {
		var summary dto.AttemptSummary
		if err := copier.Copy(&summary, &attempts[i]); err != nil {
			log.Warn().Err(err).Uint("attemptID", attempts[i].ID).Msg("Candidate GetMyAttempts: error mapping attempt summary")
			continue
		}
		summary.Status = string(attempts[i].Status)
		summaries = append(summaries, summary)
	}
	ctx.JSON(http.StatusOK, summaries)
}

// GetLeaderboard godoc
// @Summary (Candidate) Assessment leaderboard
// @Description Standings by best overall percentage, with rank, percentile and time efficiency.
// @Tags Candidate - Leaderboard
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {array} dto.LeaderboardEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments/{assessment_id}/leaderboard [get]
func (c *AttemptController) GetLeaderboard(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "assessment_id")
	if !ok {
		return
	}

	entries, err := c.leaderboardService.GetStandings(assessmentID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Candidate GetLeaderboard: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load leaderboard", Details: []string{err.Error()}})
		return
	}

	out := make([]dto.LeaderboardEntryResponse, 0, len(entries))
	for i := range entries {
		var entry dto.LeaderboardEntryResponse
		if err := copier.Copy(&entry, &entries[i]); err != nil {
			continue
		}
		out = append(out, entry)
	}
	ctx.JSON(http.StatusOK, out)
}
