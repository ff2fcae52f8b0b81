package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/service"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/response"
)

// TournamentHandler exposes tournament endpoints.
type TournamentHandler struct {
	tournaments *service.TournamentService
}

// NewTournamentHandler constructs TournamentHandler.
func NewTournamentHandler(tournaments *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

// List godoc
// @Summary List tournaments
// @Tags Tournaments
// @Produce json
// @Param status query string false "Filter by status"
// @Param sport query string false "Filter by sport"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tournaments [get]
func (h *TournamentHandler) List(c *gin.Context) {
	var filter models.TournamentFilter
	filter.Status = models.TournamentStatus(c.Query("status"))
	filter.Sport = c.Query("sport")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	tournaments, total, err := h.tournaments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, tournaments, pagination)
}

// Get godoc
// @Summary Get one tournament with registrations and bracket
// @Tags Tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} response.Envelope
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) Get(c *gin.Context) {
	tournament, err := h.tournaments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tournament, nil)
}

// ListByStudent godoc
// @Summary List tournaments a student is registered in
// @Tags Tournaments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/tournaments [get]
func (h *TournamentHandler) ListByStudent(c *gin.Context) {
	tournaments, err := h.tournaments.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tournaments, nil)
}

// Create godoc
// @Summary Create a tournament
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param payload body service.CreateTournamentRequest true "Tournament payload"
// @Success 201 {object} response.Envelope
// @Router /tournaments [post]
func (h *TournamentHandler) Create(c *gin.Context) {
	var req service.CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	createdBy := ""
	if claims := claimsFromContext(c); claims != nil {
		createdBy = claims.UserID
	}
	tournament, err := h.tournaments.Create(c.Request.Context(), createdBy, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tournament)
}

// Delete godoc
// @Summary Delete a tournament
// @Tags Tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 204 "No Content"
// @Router /tournaments/{id} [delete]
func (h *TournamentHandler) Delete(c *gin.Context) {
	if err := h.tournaments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Register godoc
// @Summary Register a student for a tournament
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param id path string true "Tournament ID"
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /tournaments/{id}/registrations [post]
func (h *TournamentHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && req.Student == "" {
		req.Student = claims.UserID
	}
	registration, err := h.tournaments.Register(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// GenerateBracket godoc
// @Summary Generate the single-elimination bracket
// @Tags Tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} response.Envelope
// @Router /tournaments/{id}/bracket [post]
func (h *TournamentHandler) GenerateBracket(c *gin.Context) {
	tournament, err := h.tournaments.GenerateBracket(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tournament, nil)
}

// ReportResult godoc
// @Summary Report a match result and advance the winner
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param id path string true "Tournament ID"
// @Param matchId path string true "Match ID"
// @Param payload body service.ReportResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Router /tournaments/{id}/matches/{matchId}/result [put]
func (h *TournamentHandler) ReportResult(c *gin.Context) {
	var req service.ReportResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tournament, err := h.tournaments.ReportResult(c.Request.Context(), c.Param("id"), c.Param("matchId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tournament, nil)
}

// ScheduleMatch godoc
// @Summary Assign court and time to a match
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param id path string true "Tournament ID"
// @Param matchId path string true "Match ID"
// @Param payload body service.ScheduleMatchRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /tournaments/{id}/matches/{matchId}/schedule [put]
func (h *TournamentHandler) ScheduleMatch(c *gin.Context) {
	var req service.ScheduleMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tournament, err := h.tournaments.ScheduleMatch(c.Request.Context(), c.Param("id"), c.Param("matchId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tournament, nil)
}
