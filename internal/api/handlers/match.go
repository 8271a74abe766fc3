package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"guestmatch/internal/api"
	"guestmatch/internal/guestfile"
	"guestmatch/internal/matching"
	"guestmatch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MatchHandler handles similar-name search requests
type MatchHandler struct {
	matchService *service.MatchService
	validator    *validator.Validate
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		validator:    validator.New(),
	}
}

// FindSimilarNamesRequest represents a similar-name search request
type FindSimilarNamesRequest struct {
	EventID  string                `json:"event_id" validate:"required,uuid"`
	Settings *service.MatchOptions `json:"settings,omitempty"`
}

// FindSimilarNames handles POST /api/v1/find-similar-names
func (h *MatchHandler) FindSimilarNames(c *gin.Context) {
	var req FindSimilarNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		api.SendValidationError(c, "Invalid event ID format", err.Error())
		return
	}

	result, err := h.matchService.FindSimilarNames(c.Request.Context(), eventID, req.Settings)
	if err != nil {
		var serrs matching.SettingsErrors
		var serr matching.SettingsError
		if errors.As(err, &serrs) || errors.As(err, &serr) {
			api.SendValidationError(c, "Invalid matching settings", err.Error())
			return
		}
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, result, nil)
}

// FindSimilarNamesInFile handles POST /api/v1/find-similar-names/file: a
// multipart upload of a guest CSV in the "file" field, with optional settings
// overrides as a JSON string in the "settings" field. The response is the
// result CSV.
func (h *MatchHandler) FindSimilarNamesInFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		api.SendValidationError(c, "Missing guest file upload", err.Error())
		return
	}

	var opts *service.MatchOptions
	if raw := c.PostForm("settings"); raw != "" {
		opts = &service.MatchOptions{}
		if err := json.Unmarshal([]byte(raw), opts); err != nil {
			api.SendValidationError(c, "Invalid settings", err.Error())
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}
	defer f.Close()

	records, err := guestfile.ReadRecordsFrom(f)
	if err != nil {
		api.SendValidationError(c, "Invalid guest file", err.Error())
		return
	}

	result, err := h.matchService.MatchRecords(records, opts)
	if err != nil {
		var serrs matching.SettingsErrors
		var serr matching.SettingsError
		if errors.As(err, &serrs) || errors.As(err, &serr) {
			api.SendValidationError(c, "Invalid matching settings", err.Error())
			return
		}
		api.SendInternalError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="similar-names.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	// Headers are already sent at this point; the logging middleware picks the
	// error up from the context.
	if err := guestfile.WriteResultsTo(c.Writer, result.Rows); err != nil {
		_ = c.Error(err)
	}
}
