package api

import (
	"errors"
	"net/http"

	models "TechScreener/internal/domain/models"
	domrepo "TechScreener/internal/domain/repository"
	"TechScreener/internal/service/ratelimit"
	"TechScreener/internal/service/tradingview"
	"TechScreener/internal/usecase"
	xhttp "TechScreener/pkg/http"
	xlogger "TechScreener/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScreenerEchoHandler serves the screener over Echo.
type ScreenerEchoHandler struct {
	logger   *xlogger.Logger
	screener *usecase.Screener
	limiter  *ratelimit.Limiter
	market   string
}

// QueryPreview is the dry-run response: the typed query and the exact
// provider payload it encodes to.
type QueryPreview struct {
	Query   models.Query            `json:"query"`
	Clauses []string                `json:"clauses"`
	Payload tradingview.ScanPayload `json:"payload"`
}

// NewScreenerEchoHandler builds the handler. market overrides the filter's
// default market when non-empty.
func NewScreenerEchoHandler(logger *xlogger.Logger, screener *usecase.Screener, limiter *ratelimit.Limiter, market string) *ScreenerEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ScreenerEchoHandler{logger: logger, screener: screener, limiter: limiter, market: market}
}

func (h *ScreenerEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/profiles", h.Profiles)
	g.GET("/scan/:profile/query", h.Query)
	g.POST("/scan/:profile/query", h.Query)
	g.POST("/scan/:profile", h.Scan, h.throttle)
	g.POST("/scan/:profile/export", h.Export, h.throttle)
}

func (h *ScreenerEchoHandler) Profiles(c echo.Context) error {
	profiles := models.Profiles()
	out := make([]models.ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, models.NewProfileInfo(p))
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *ScreenerEchoHandler) Query(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, err := h.screener.Preview(req.Profile, h.filter(req))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	payload, err := tradingview.EncodeQuery(q)
	if err != nil {
		h.logger.Error("encode query", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not encode query").WithError(err))
	}
	return xhttp.SuccessResponse(c, QueryPreview{Query: q, Clauses: q.Clauses(), Payload: payload})
}

// Scan runs a scan. Provider failures still answer 200: the body carries an
// empty result and a notice with the user message.
func (h *ScreenerEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.screener.Scan(c.Request().Context(), req.Profile, h.filter(req))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScreenerEchoHandler) Export(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	_, out, err := h.screener.Export(c.Request().Context(), req.Profile, h.filter(req))
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= 500 {
			h.logger.Error("export failed", xlogger.String("profile", req.Profile), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.AttachmentResponse(c, out.FileName, out.ContentType, out.Data)
}

func (h *ScreenerEchoHandler) filter(req *models.ScanRequest) models.Filter {
	f := req.Filter()
	if h.market != "" {
		f.Market = h.market
	}
	return f
}

func (h *ScreenerEchoHandler) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many scan requests, slow down"))
		}
		return next(c)
	}
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrUnknownProfile):
		return xhttp.NewAppError("ERR_UNKNOWN_PROFILE", "profile", err.Error(), http.StatusNotFound).WithError(err)
	case errors.Is(err, usecase.ErrScanInProgress):
		return xhttp.ConflictError("ERR_SCAN_IN_PROGRESS", "Another scan is running. Try again shortly.").WithError(err)
	case errors.Is(err, usecase.ErrNoMatch):
		return xhttp.NewAppError("ERR_NO_MATCH", "", usecase.MsgNoMatch, http.StatusNotFound).WithError(err)
	case errors.Is(err, domrepo.ErrRequestRejected):
		return xhttp.UnprocessableError("ERR_REQUEST_REJECTED", usecase.MsgRejected).WithError(err)
	case errors.Is(err, usecase.ErrProvider):
		return xhttp.BadGatewayError("ERR_PROVIDER", err.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
