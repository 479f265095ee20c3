package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
)

// AdminController exposes question bank and assessment config management.
type AdminController struct {
	bankService service.BankService
}

func NewAdminController(bankService service.BankService) *AdminController {
	return &AdminController{bankService: bankService}
}

// CreateQuestion godoc
// @Summary (Admin) Add a question to the bank
// @Description Create a bank question. The payload matching the question type (mcq/coding/subjective) is required and validated.
// @Tags Admin - Question Bank
// @Accept json
// @Produce json
// @Param question body dto.CreateQuestionRequest true "Question definition"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid question definition"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.bankService.CreateQuestion(req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidQuestion) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Msg("Admin CreateQuestion: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create question", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListQuestions godoc
// @Summary (Admin) List all bank questions
// @Tags Admin - Question Bank
// @Produce json
// @Success 200 {array} dto.QuestionResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions [get]
func (c *AdminController) ListQuestions(ctx *gin.Context) {
	questions, err := c.bankService.ListQuestions()
	if err != nil {
		log.Error().Err(err).Msg("Admin ListQuestions: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// CreateAssessment godoc
// @Summary (Admin) Create an assessment config
// @Description Create an assessment configuration. Distribution percentages must sum to 100.
// @Tags Admin - Assessments
// @Accept json
// @Produce json
// @Param assessment body dto.CreateAssessmentRequest true "Assessment configuration"
// @Success 201 {object} dto.AssessmentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid configuration"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assessments [post]
func (c *AdminController) CreateAssessment(ctx *gin.Context) {
	var req dto.CreateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.bankService.CreateAssessment(req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidConfig) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Msg("Admin CreateAssessment: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create assessment", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListAssessments godoc
// @Summary (Admin) List assessment configs
// @Tags Admin - Assessments
// @Produce json
// @Success 200 {array} dto.AssessmentResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assessments [get]
func (c *AdminController) ListAssessments(ctx *gin.Context) {
	assessments, err := c.bankService.ListAssessments()
	if err != nil {
		log.Error().Err(err).Msg("Admin ListAssessments: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list assessments", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, assessments)
}
