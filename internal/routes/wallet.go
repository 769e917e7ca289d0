package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/transcrypt/transcrypt/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints. The idempotency
// middleware guards creation only; replaying a create must not hit the
// faucet twice, while access and balance checks are naturally repeatable.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idem fiber.Handler, rateLimiter fiber.Handler) {
	createHandlers := []fiber.Handler{h.Create}
	if idem != nil {
		createHandlers = append([]fiber.Handler{idem}, createHandlers...)
	}
	r.Post("/wallet/create", createHandlers...)
	r.Post("/wallet/access", rateLimiter, h.Access)
	r.Post("/wallet/fund-account", rateLimiter, h.Fund)
	r.Post("/wallet/check-account", h.CheckAccount)
}
