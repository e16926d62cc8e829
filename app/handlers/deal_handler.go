package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mmutvidal/escapadas-go/app/dto"
	businessflow "github.com/mmutvidal/escapadas-go/business_flow"
	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/repository"
)

// DealHandler exposes the deal pipeline and the review/publish workflow
type DealHandler struct {
	dealFlow    businessflow.DealSelectionFlow
	publishFlow businessflow.PublishFlow
	runRepo     repository.PipelineRunRepository
	markets     []config.Market
	validator   *validator.Validate
}

// NewDealHandler creates a new deal handler
func NewDealHandler(
	dealFlow businessflow.DealSelectionFlow,
	publishFlow businessflow.PublishFlow,
	runRepo repository.PipelineRunRepository,
	markets []config.Market,
) *DealHandler {
	return &DealHandler{
		dealFlow:    dealFlow,
		publishFlow: publishFlow,
		runRepo:     runRepo,
		markets:     markets,
		validator:   validator.New(),
	}
}

func (h *DealHandler) marketByOrigin(origin string) (config.Market, bool) {
	origin = strings.ToUpper(origin)
	for _, m := range h.markets {
		if m.Origin == origin {
			return m, true
		}
	}
	return config.Market{}, false
}

// RunPipeline triggers a pipeline run for one market and returns the
// resulting selection.
func (h *DealHandler) RunPipeline(c fiber.Ctx) error {
	var req dto.RunRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST_BODY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	market, ok := h.marketByOrigin(req.Market)
	if !ok {
		return ErrorResponse(c, fiber.StatusNotFound, "Unknown market", "UNKNOWN_MARKET", nil)
	}

	ctx, cancel := requestContext(c, 10*time.Minute)
	defer cancel()

	sel, err := h.dealFlow.RunDaily(ctx, market)
	switch {
	case errors.Is(err, businessflow.ErrNoOffers):
		return ErrorResponse(c, fiber.StatusNotFound, "No offers found for the search window", "NO_OFFERS", nil)
	case errors.Is(err, businessflow.ErrNoCandidates):
		return ErrorResponse(c, fiber.StatusNotFound, "No candidates passed the filters", "NO_CANDIDATES", nil)
	case err != nil:
		return ErrorResponse(c, fiber.StatusInternalServerError, "Pipeline run failed", "PIPELINE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Pipeline completed", businessflow.ToSelectionDTO(sel))
}

// TodaySelection returns the latest in-memory selection for a market.
func (h *DealHandler) TodaySelection(c fiber.Ctx) error {
	market, ok := h.marketByOrigin(c.Params("market"))
	if !ok {
		return ErrorResponse(c, fiber.StatusNotFound, "Unknown market", "UNKNOWN_MARKET", nil)
	}

	sel := h.dealFlow.LatestSelection(market.Origin)
	if sel == nil {
		return ErrorResponse(c, fiber.StatusNotFound, "No selection available yet", "NO_SELECTION", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Selection retrieved", businessflow.ToSelectionDTO(sel))
}

// ListRuns returns the recent archived pipeline runs for a market.
func (h *DealHandler) ListRuns(c fiber.Ctx) error {
	market, ok := h.marketByOrigin(c.Params("market"))
	if !ok {
		return ErrorResponse(c, fiber.StatusNotFound, "Unknown market", "UNKNOWN_MARKET", nil)
	}

	ctx, cancel := requestContext(c, 30*time.Second)
	defer cancel()

	runs, err := h.runRepo.ListRecent(ctx, market.Origin, 30)
	if err != nil {
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to query runs", "RUNS_QUERY_FAILED", nil)
	}

	out := make([]any, 0, len(runs))
	for _, run := range runs {
		out = append(out, businessflow.ToRunSummaryDTO(run))
	}
	return SuccessResponse(c, fiber.StatusOK, "Runs retrieved", out)
}

// SendForReview opens a review job for the latest selection of a market.
func (h *DealHandler) SendForReview(c fiber.Ctx) error {
	var req dto.ReviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST_BODY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	market, ok := h.marketByOrigin(req.Market)
	if !ok {
		return ErrorResponse(c, fiber.StatusNotFound, "Unknown market", "UNKNOWN_MARKET", nil)
	}

	sel := h.dealFlow.LatestSelection(market.Origin)
	if sel == nil {
		return ErrorResponse(c, fiber.StatusNotFound, "No selection available yet", "NO_SELECTION", nil)
	}

	ctx, cancel := requestContext(c, 2*time.Minute)
	defer cancel()

	job, err := h.publishFlow.SendForReview(ctx, sel, req.VideoURL)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadGateway, "Failed to send for review", "REVIEW_SEND_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusCreated, "Review job opened", businessflow.ToReviewJobDTO(job))
}

// CurrentReview returns the open review job.
func (h *DealHandler) CurrentReview(c fiber.Ctx) error {
	job := h.publishFlow.CurrentJob()
	if job == nil {
		return ErrorResponse(c, fiber.StatusNotFound, "No review job open", "NO_REVIEW_JOB", nil)
	}
	return SuccessResponse(c, fiber.StatusOK, "Review job retrieved", businessflow.ToReviewJobDTO(job))
}

// NextCandidate rotates the open review job to its next candidate.
func (h *DealHandler) NextCandidate(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid job id", "INVALID_JOB_ID", nil)
	}

	ctx, cancel := requestContext(c, 2*time.Minute)
	defer cancel()

	candidate, err := h.publishFlow.NextCandidate(ctx, jobID)
	switch {
	case errors.Is(err, businessflow.ErrNoReviewJob):
		return ErrorResponse(c, fiber.StatusNotFound, "No review job open", "NO_REVIEW_JOB", nil)
	case err != nil:
		return ErrorResponse(c, fiber.StatusBadGateway, "Failed to rotate candidate", "REVIEW_SEND_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Candidate rotated", businessflow.ToCandidateDTO(candidate, true))
}

// Publish confirms the current candidate of the open review job.
func (h *DealHandler) Publish(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid job id", "INVALID_JOB_ID", nil)
	}

	ctx, cancel := requestContext(c, 10*time.Minute)
	defer cancel()

	permalink, err := h.publishFlow.Publish(ctx, jobID)
	switch {
	case errors.Is(err, businessflow.ErrNoReviewJob):
		return ErrorResponse(c, fiber.StatusNotFound, "No review job open", "NO_REVIEW_JOB", nil)
	case errors.Is(err, businessflow.ErrPublishChannelDisabled):
		return ErrorResponse(c, fiber.StatusConflict, "Publishing is disabled", "PUBLISH_DISABLED", nil)
	case err != nil:
		return ErrorResponse(c, fiber.StatusBadGateway, "Publishing failed", "PUBLISH_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Reel published", dto.PublishResponse{Permalink: permalink})
}
