package ui

import (
	"html/template"
	"net/http"
	"strconv"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"

	"github.com/gin-gonic/gin"
)

// evaluateRequest is shared by the HTML form and the JSON API. Pointers let
// the binding tell a missing field from an explicit zero.
type evaluateRequest struct {
	ControlVisitors      *int `form:"control_visitors" json:"control_visitors" binding:"required"`
	ControlConversions   *int `form:"control_conversions" json:"control_conversions" binding:"required"`
	TreatmentVisitors    *int `form:"treatment_visitors" json:"treatment_visitors" binding:"required"`
	TreatmentConversions *int `form:"treatment_conversions" json:"treatment_conversions" binding:"required"`
	ConfidenceLevel      *int `form:"confidence_level" json:"confidence_level" binding:"required"`
}

func (r evaluateRequest) input() abtest.Input {
	return abtest.Input{
		ControlVisitors:      *r.ControlVisitors,
		ControlConversions:   *r.ControlConversions,
		TreatmentVisitors:    *r.TreatmentVisitors,
		TreatmentConversions: *r.TreatmentConversions,
		Confidence:           abtest.ConfidenceLevel(*r.ConfidenceLevel),
	}
}

// formValues echoes what the user typed back into the form
type formValues struct {
	ControlVisitors      string
	ControlConversions   string
	TreatmentVisitors    string
	TreatmentConversions string
	Confidence           int
}

type levelOption struct {
	Value   int
	Label   string
	Checked bool
}

type pageData struct {
	Title      string
	Form       formValues
	Levels     []levelOption
	Evaluation *abtest.Evaluation
	Error      string
	About      template.HTML
}

type apiError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) newPage(form formValues) pageData {
	levels := make([]levelOption, 0, 3)
	for _, level := range abtest.ConfidenceLevels() {
		levels = append(levels, levelOption{
			Value:   int(level),
			Label:   level.String(),
			Checked: int(level) == form.Confidence,
		})
	}
	return pageData{Title: AppTitle, Form: form, Levels: levels}
}

func (s *Server) defaultForm() formValues {
	return formValues{
		ControlVisitors:      "1",
		ControlConversions:   "0",
		TreatmentVisitors:    "1",
		TreatmentConversions: "0",
		Confidence:           int(s.defaultConfidence),
	}
}

// handleIndex renders the empty form
func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.newPage(s.defaultForm()))
}

// handleAbout renders the explanation of the test
func (s *Server) handleAbout(c *gin.Context) {
	page := s.newPage(s.defaultForm())
	page.About = s.aboutHTML
	s.renderTemplate(c, http.StatusOK, "about.html", page)
}

// handleEvaluateForm runs the test from a form submission and re-renders the page
func (s *Server) handleEvaluateForm(c *gin.Context) {
	form := formValues{
		ControlVisitors:      c.PostForm("control_visitors"),
		ControlConversions:   c.PostForm("control_conversions"),
		TreatmentVisitors:    c.PostForm("treatment_visitors"),
		TreatmentConversions: c.PostForm("treatment_conversions"),
		Confidence:           int(s.defaultConfidence),
	}
	if level, err := strconv.Atoi(c.PostForm("confidence_level")); err == nil {
		form.Confidence = level
	}
	page := s.newPage(form)

	var req evaluateRequest
	if err := c.ShouldBind(&req); err != nil {
		page.Error = "Please fill in every field with a whole number."
		s.renderTemplate(c, http.StatusBadRequest, "index.html", page)
		return
	}

	ev, err := s.evaluator.Evaluate(c.Request.Context(), req.input())
	if err != nil {
		page.Error = errors.Message(err)
		s.renderTemplate(c, http.StatusBadRequest, "index.html", page)
		return
	}

	page.Evaluation = ev
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// handleEvaluateAPI is the JSON equivalent of the form
func (s *Server) handleEvaluateAPI(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.ValidationError(err.Error()))
		return
	}

	ev, err := s.evaluator.Evaluate(c.Request.Context(), req.input())
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error().Err(err).Msg("evaluation failed")
			err = errors.InternalError("evaluation failed")
		}
		respondError(c, status, err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, apiError{Code: errors.GetCode(err), Error: errors.Message(err)})
}

func (s *Server) handleConfidenceLevels(c *gin.Context) {
	type level struct {
		Level         int     `json:"level"`
		Quantile      float64 `json:"quantile"`
		CriticalValue float64 `json:"critical_value"`
		Default       bool    `json:"default"`
	}

	levels := make([]level, 0, 3)
	for _, l := range abtest.ConfidenceLevels() {
		p, _ := l.Quantile()
		z, _ := l.CriticalValue()
		levels = append(levels, level{Level: int(l), Quantile: p, CriticalValue: z, Default: l == s.defaultConfidence})
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidConfidenceLevel, errors.CodeDegenerateInput, errors.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
