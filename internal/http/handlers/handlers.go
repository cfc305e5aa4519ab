package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/qaztriage/backend/internal/ai"
	"github.com/qaztriage/backend/internal/attach"
	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/db"
	"github.com/qaztriage/backend/internal/geo"
	"github.com/qaztriage/backend/internal/geocode"
	"github.com/qaztriage/backend/internal/service"
)

type Handler struct {
	Store           *db.Store
	Classifier      ai.Classifier
	Rules           *classifier.RuleClassifier
	Geocoder        geocode.Geocoder
	Validator       *validator.Validate
	Logger          zerolog.Logger
	HomeCountry     string
	AttachmentsRoot string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Import CSV data
// @Description Upload tickets, managers, and offices CSV files
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param tickets formData file true "tickets.csv"
// @Param managers formData file true "managers.csv"
// @Param business_units formData file true "business_units.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	ticketsFile, err := c.FormFile("tickets")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets file required", nil)
		return
	}
	managersFile, err := c.FormFile("managers")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "managers file required", nil)
		return
	}
	unitsFile, err := c.FormFile("business_units")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "business_units file required", nil)
		return
	}
	if !validateExt(ticketsFile.Filename) || !validateExt(managersFile.Filename) || !validateExt(unitsFile.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "all files must be .csv", nil)
		return
	}

	summary := ImportSummary{Errors: []string{}}

	tickets, errs := parseTicketsCSV(ticketsFile)
	summary.Tickets.Parsed = len(tickets)
	summary.Tickets.Errors = len(errs)
	summary.Errors = append(summary.Errors, errs...)

	managers, errs := parseManagersCSV(managersFile)
	summary.Managers.Parsed = len(managers)
	summary.Managers.Errors = len(errs)
	summary.Errors = append(summary.Errors, errs...)

	units, errs := parseBusinessUnitsCSV(unitsFile)
	summary.BusinessUnits.Parsed = len(units)
	summary.BusinessUnits.Errors = len(errs)
	summary.Errors = append(summary.Errors, errs...)

	if len(summary.Errors) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", summary.Errors)
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.Truncate(ctx); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reset tables", err.Error())
		return
	}

	inserted, err := h.Store.InsertTickets(ctx, tickets)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert tickets", err.Error())
		return
	}
	summary.Tickets.Inserted = int(inserted)

	inserted, err = h.Store.InsertManagers(ctx, managers)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert managers", err.Error())
		return
	}
	summary.Managers.Inserted = int(inserted)

	inserted, err = h.Store.InsertBusinessUnits(ctx, units)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert business units", err.Error())
		return
	}
	summary.BusinessUnits.Inserted = int(inserted)

	c.JSON(http.StatusOK, summary)
}

// @Summary Process pending tickets
// @Tags process
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/process [post]
func (h *Handler) Process(c *gin.Context) {
	runID, err := h.Store.CreateRun(c.Request.Context(), "RUNNING")
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	processor := service.ProcessingService{
		Store:           h.Store,
		Classifier:      h.Classifier,
		Logger:          h.Logger,
		AttachmentsRoot: h.AttachmentsRoot,
		EngineOptions:   service.EngineOptions{HomeCountry: h.HomeCountry},
	}
	summary, err := processor.ProcessTickets(c.Request.Context())

	status := "SUCCESS"
	if err != nil {
		status = "FAILED"
	}
	if finishErr := h.Store.FinishRun(c.Request.Context(), runID, status, marshalSummary(summary)); finishErr != nil {
		h.Logger.Error().Err(finishErr).Msg("failed to finish run")
	}
	if err != nil {
		h.Logger.Error().Err(err).Msg("processing failed")
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Processing failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) ProcessedList(c *gin.Context) {
	office := strings.TrimSpace(c.Query("office"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListProcessedTickets(c.Request.Context(), office, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list processed tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) ManagersList(c *gin.Context) {
	office := strings.TrimSpace(c.Query("office"))
	skill := strings.ToUpper(strings.TrimSpace(c.Query("skill")))
	items, err := h.Store.ListManagers(c.Request.Context(), office, skill)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list managers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) BusinessUnitsList(c *gin.Context) {
	items, err := h.Store.ListBusinessUnits(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list business units", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load latest run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

type ClassifyRequest struct {
	Text        string `json:"text" validate:"required"`
	Attachments string `json:"attachments"`
}

// @Summary Classify arbitrary text with the rule classifier
// @Tags debug
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/debug/classify [post]
func (h *Handler) DebugClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is required", err.Error())
		return
	}

	atts := attach.Parse(req.Attachments)
	meta := h.Rules.Classify(req.Text, attach.HintText(atts))
	c.JSON(http.StatusOK, gin.H{"metadata": meta, "attachments": atts})
}

// RegeocodeBusinessUnits backfills coordinates for offices whose city is
// not in the static table.
func (h *Handler) RegeocodeBusinessUnits(c *gin.Context) {
	units, err := h.Store.ListBusinessUnits(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list business units", err.Error())
		return
	}

	force := c.Query("force") == "1"
	updated := 0
	skipped := 0
	for _, u := range units {
		if _, known := geo.LookupCity(u.Name); (known || (u.Lat != nil && u.Lon != nil)) && !force {
			skipped++
			continue
		}
		lat, lon, err := h.Geocoder.Geocode(c.Request.Context(), geocode.BuildQuery(h.HomeCountry, u.Name, u.Address))
		if err != nil {
			h.Logger.Warn().Err(err).Str("unit", u.Name).Msg("geocode failed")
			skipped++
			continue
		}
		if err := h.Store.UpdateBusinessUnitCoords(c.Request.Context(), u.ID, lat, lon); err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update coordinates", err.Error())
			return
		}
		updated++
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "skipped": skipped})
}
