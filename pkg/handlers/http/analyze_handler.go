package http

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/common"
	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/request"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/response"
	"github.com/NeuralTrust/TextModerator/pkg/infra/prometheus"
	"github.com/NeuralTrust/TextModerator/pkg/infra/ratelimit"
	"github.com/NeuralTrust/TextModerator/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var suggestions = map[int]string{
	fiber.StatusServiceUnavailable:  "Please try again later. Both primary and backup services are having issues.",
	fiber.StatusRequestTimeout:      "Try reducing the text length or splitting into smaller chunks.",
	fiber.StatusInternalServerError: "Please try again or contact support if the issue persists.",
}

type AnalyzeHandlerDeps struct {
	Logger    *logrus.Logger
	Moderator moderation.Moderator
	Limiter   ratelimit.Limiter
	Now       func() time.Time
}

type analyzeHandler struct {
	logger    *logrus.Logger
	moderator moderation.Moderator
	limiter   ratelimit.Limiter
	now       func() time.Time
}

func NewAnalyzeHandler(deps AnalyzeHandlerDeps) Handler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &analyzeHandler{
		logger:    deps.Logger,
		moderator: deps.Moderator,
		limiter:   deps.Limiter,
		now:       now,
	}
}

// Handle @Summary Analyze text for toxicity
// @Description Classifies the submitted text through the strategy chain. The text is never stored or logged.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body request.AnalyzeRequest true "Text to analyze"
// @Success 200 {object} response.AnalyzeResponse "Analysis result"
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 408 {object} response.ErrorResponse "Analysis timed out"
// @Failure 429 {object} response.ErrorResponse "Rate limit exceeded"
// @Failure 503 {object} response.ErrorResponse "All strategies unavailable"
// @Router /api/analyze [post]
func (h *analyzeHandler) Handle(c *fiber.Ctx) error {
	clientID := utils.ExtractClientID(c)

	var req request.AnalyzeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.logger.WithField("client", domain.MaskClientID(clientID)).Debug("invalid analyze payload")
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: ErrInvalidJsonPayload})
		}
	}

	modReq, err := req.ToDomain(clientID)
	if err != nil {
		return h.handleError(c, err)
	}

	decision, err := h.limiter.Allow(c.UserContext(), clientID)
	if err != nil {
		h.logger.WithError(err).WithField("client", domain.MaskClientID(clientID)).Warn("rate limiter failed, admitting request")
	}
	setRateLimitHeaders(c, decision)
	if !decision.Allowed {
		prometheus.RateLimited.Inc()
		h.logger.WithField("client", domain.MaskClientID(clientID)).Info("rate limit exceeded")
		return h.handleError(c, domain.NewRateLimitError(decision.RetryAfter))
	}

	result, err := h.moderator.Classify(c.UserContext(), modReq)
	if err != nil {
		return h.handleError(c, err)
	}

	resp := response.AnalyzeResponse{
		Success:   true,
		Method:    result.Method,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Results: response.AnalyzeResults{
			ChartData: result.ChartData,
			Analysis:  result.Analysis(modReq.Length(), modReq.Safer),
		},
		PrivacyNote: common.PrivacyNote,
	}
	if result.Fallback {
		resp.Notice = common.FallbackNotice
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *analyzeHandler) handleError(c *fiber.Ctx, err error) error {
	status := domain.StatusCode(err)
	body := response.ErrorResponse{
		Error:      "An unexpected error occurred.",
		Suggestion: suggestions[status],
	}

	var modErr *domain.Error
	if errors.As(err, &modErr) {
		body.Error = modErr.Message
		body.Details = modErr.Details
	}

	switch status {
	case fiber.StatusBadRequest:
		body.Suggestion = ""
	case fiber.StatusTooManyRequests:
		seconds := retryAfterSeconds(modErr)
		body.RetryAfter = &seconds
		c.Set(common.RetryAfterHeader, strconv.Itoa(seconds))
	case fiber.StatusInternalServerError:
		h.logger.WithError(err).Error("analysis failed")
	}
	return c.Status(status).JSON(body)
}

func retryAfterSeconds(err *domain.Error) int {
	if err == nil || err.RetryAfter <= 0 {
		return 1
	}
	return int(math.Ceil(err.RetryAfter.Seconds()))
}

func setRateLimitHeaders(c *fiber.Ctx, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	c.Set(common.RateLimitLimitHeader, strconv.Itoa(d.Limit))
	c.Set(common.RateLimitRemainingHeader, strconv.Itoa(d.Remaining))
	if !d.Reset.IsZero() {
		c.Set(common.RateLimitResetHeader, strconv.FormatInt(d.Reset.Unix(), 10))
	}
}
