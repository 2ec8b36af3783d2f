package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// CustodyHandler handles HTTP requests for produce registration, transfer,
// and trace queries.
type CustodyHandler struct {
	service ports.CustodyService
}

func NewCustodyHandler(service ports.CustodyService) *CustodyHandler {
	return &CustodyHandler{service: service}
}

type registerProduceRequest struct {
	ProduceType string `json:"produce_type" validate:"required"`
	Origin      string `json:"origin" validate:"required"`
	Quality     string `json:"quality" validate:"required"`
	Price       string `json:"price" validate:"required"`
}

type registerProduceResponse struct {
	ID uint64 `json:"id"`
}

type transferProduceRequest struct {
	ID       string `json:"id" validate:"required"`
	NewOwner string `json:"new_owner" validate:"required,len=10,numeric"`
	Details  string `json:"details" validate:"required"`
	NewPrice string `json:"new_price" validate:"required"`
}

type producesResponse struct {
	Produces []domain.Produce `json:"produces"`
}

type verifyStakeholderResponse struct {
	Present bool `json:"present"`
}

type rebuildIndexResponse struct {
	ProduceIDs []uint64 `json:"produce_ids"`
}

// RegisterProduce registers a new produce on the ledger. Farmer only.
//
// @Summary      Register produce
// @Tags         produce
// @Accept       json
// @Produce      json
// @Param        body  body      registerProduceRequest  true  "Produce details"
// @Success      201   {object}  registerProduceResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /produce [post]
func (h *CustodyHandler) RegisterProduce(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req registerProduceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.RegisterProduce(c.Request().Context(), ports.RegisterProduceInput{
		Caller:      caller,
		ProduceType: req.ProduceType,
		Origin:      req.Origin,
		Quality:     req.Quality,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerProduceResponse{ID: id})
}

// TransferProduce hands custody of a produce to the next role in the chain.
//
// @Summary      Transfer produce
// @Tags         produce
// @Accept       json
// @Produce      json
// @Param        body  body      transferProduceRequest  true  "Transfer details"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /produce/transfer [post]
func (h *CustodyHandler) TransferProduce(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req transferProduceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.TransferProduce(c.Request().Context(), ports.TransferProduceInput{
		Caller:   caller,
		ID:       req.ID,
		NewOwner: req.NewOwner,
		Details:  req.Details,
		NewPrice: req.NewPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "transferred"})
}

// ListProduces returns the caller's current holdings.
//
// @Summary      List my produces
// @Tags         produce
// @Produce      json
// @Success      200  {object}  producesResponse
// @Router       /produce [get]
func (h *CustodyHandler) ListProduces(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	produces, err := h.service.ProducesByOwner(c.Request().Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, producesResponse{Produces: produces})
}

// Trace returns the full custody history of one produce.
//
// @Summary      Trace a produce
// @Tags         produce
// @Produce      json
// @Param        id   path      string  true  "Produce id"
// @Success      200  {object}  domain.Produce
// @Failure      404  {object}  map[string]string
// @Router       /produce/{id}/trace [get]
func (h *CustodyHandler) Trace(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	produce, err := h.service.Trace(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, produce)
}

// TransferredTraces returns the traces of every produce the caller originated
// and has since transferred away.
//
// @Summary      List traces of transferred produces
// @Tags         produce
// @Produce      json
// @Success      200  {object}  producesResponse
// @Router       /produce/transferred [get]
func (h *CustodyHandler) TransferredTraces(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	traces, err := h.service.TransferredTraces(c.Request().Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, producesResponse{Produces: traces})
}

// VerifyStakeholder reports whether a phone appears in a produce's trace.
//
// @Summary      Verify a stakeholder in a trace
// @Tags         produce
// @Produce      json
// @Param        id     path      string  true  "Produce id"
// @Param        phone  path      string  true  "Stakeholder phone"
// @Success      200    {object}  verifyStakeholderResponse
// @Failure      404    {object}  map[string]string
// @Router       /produce/{id}/stakeholders/{phone} [get]
func (h *CustodyHandler) VerifyStakeholder(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	present, err := h.service.VerifyStakeholder(c.Request().Context(), c.Param("id"), c.Param("phone"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, verifyStakeholderResponse{Present: present})
}

// RebuildIndex recomputes the caller's transfer index from a full ledger scan.
//
// @Summary      Rebuild my transfer index
// @Tags         produce
// @Produce      json
// @Success      200  {object}  rebuildIndexResponse
// @Failure      503  {object}  map[string]string
// @Router       /produce/index/rebuild [post]
func (h *CustodyHandler) RebuildIndex(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	ids, err := h.service.RebuildIndex(c.Request().Context(), caller.Phone)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rebuildIndexResponse{ProduceIDs: ids})
}
