package wallet

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/transcrypt/transcrypt/internal/auth"
	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/stellar"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create opens a wallet and provisions funded accounts for every default currency.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Create(c.UserContext(), CreateInput{
		Name:     req.Name,
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrEmailRegistered) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	message := "wallet created successfully"
	if !result.Report.AllFunded {
		message = "wallet created with some funding issues; check funding_results"
	}

	return c.Status(http.StatusCreated).JSON(CreateResponse{
		Message:         message,
		WalletID:        result.Record.ID,
		WalletAddresses: result.Record.Addresses,
		FundingResults:  result.Report.Outcomes,
		AllFunded:       result.Report.AllFunded,
		Warnings:        result.Report.Warnings,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Access authenticates the caller and returns the wallet with live funding status.
func (h *Handler) Access(c *fiber.Ctx) error {
	var req AccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}

	result, err := h.service.Access(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, auth.ErrInvalidCredential):
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	statuses := make(map[string]currencyStatusJSON, len(result.Statuses))
	for currency, status := range result.Statuses {
		statuses[currency] = currencyStatusJSON{
			Currency:     status.Currency,
			Network:      status.Network,
			PublicKey:    status.Address,
			Funded:       status.Funded,
			NeedsFunding: status.NeedsFunding,
			Balance:      status.Balance,
			Error:        status.Err,
		}
	}

	return c.Status(http.StatusOK).JSON(AccessResponse{
		Message:         "wallet accessed successfully",
		Name:            result.Record.Name,
		Email:           result.Record.Email,
		WalletAddresses: result.Record.Addresses,
		WalletStatus:    statuses,
		Network:         h.service.network,
		Warnings:        result.Warnings,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Fund runs one bounded faucet pass for the submitted public key.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req FundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	address := strings.TrimSpace(req.PublicKey)
	if address == "" {
		return fiber.NewError(http.StatusBadRequest, "public_key is required")
	}

	outcome := h.service.Fund(c.UserContext(), address)

	status := http.StatusOK
	switch outcome.Err {
	case funding.ErrKindInvalidAddress:
		status = http.StatusBadRequest
	case funding.ErrKindFundingFailed, funding.ErrKindTransient:
		status = http.StatusBadGateway
	case funding.ErrKindTimeout:
		status = http.StatusGatewayTimeout
	}

	return c.Status(status).JSON(FundResponse{
		Funded:    outcome.Funded,
		PublicKey: address,
		Balance:   stellar.FormatStroops(outcome.FinalBalance),
		Attempts:  outcome.Attempts,
		Error:     string(outcome.Err),
		Message:   outcome.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// CheckAccount reports the on-chain state of a public key.
func (h *Handler) CheckAccount(c *fiber.Ctx) error {
	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	address := strings.TrimSpace(req.PublicKey)
	if address == "" {
		return fiber.NewError(http.StatusBadRequest, "public_key is required")
	}

	state, err := h.service.CheckAccount(c.UserContext(), address)
	if err != nil {
		if errors.Is(err, ErrInvalidAddress) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	message := "account does not exist on the network"
	switch {
	case state.Funded():
		message = "account is funded"
	case state.Exists:
		message = "account exists but has zero balance"
	}

	return c.Status(http.StatusOK).JSON(CheckResponse{
		Exists:    state.Exists,
		Funded:    state.Funded(),
		PublicKey: address,
		Balance:   stellar.FormatStroops(state.Balance),
		Message:   message,
	})
}
