package handlers

import (
	"fmt"

	"ecoms/internal/models"
	"ecoms/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Customers place and look up orders;
// listing everything and lifecycle changes go through staff.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, staff fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/customer/:email", h.HandleGetOrdersByCustomerEmail)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/", staff, h.HandleGetOrders)
	orderRoutes.Put("/:id/status", staff, h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/status", staff, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", staff, h.HandleDeleteOrder)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	order, err := h.service.GetOrderByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

// HandleGetOrdersByCustomerEmail retrieves the orders placed with an email address.
func (h *OrderHandler) HandleGetOrdersByCustomerEmail(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersByCustomerEmail(c.UserContext(), unescapedParam(c, "email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.service.CreateOrder(c.UserContext(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateOrderStatus moves a pending order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body for status update", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return writeError(c, fmt.Errorf("%w: %v", services.ErrInvalidOrderOperation, err))
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

// HandleDeleteOrder removes a pending or cancelled order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
