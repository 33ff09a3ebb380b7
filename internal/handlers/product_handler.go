package handlers

import (
	"ecoms/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes go through staff.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, staff fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", staff, h.HandleCreateProduct)
	productRoutes.Put("/:id", staff, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", staff, h.HandleDeleteProduct)
}

func pageRequest(c *fiber.Ctx) (services.PageRequest, error) {
	page, err := intQuery(c, "page", 0)
	if err != nil {
		return services.PageRequest{}, err
	}
	size, err := intQuery(c, "size", 10)
	if err != nil {
		return services.PageRequest{}, err
	}
	return services.PageRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.Query("sortBy", "id"),
		SortDir: c.Query("sortDir", "asc"),
	}, nil
}

// HandleGetProducts returns one page of products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	req, err := pageRequest(c)
	if err != nil {
		return badRequest(c, "Invalid paging parameters", err)
	}
	page, err := h.service.GetAllProducts(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// HandleSearchProducts returns one page of products filtered by name and category.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	req, err := pageRequest(c)
	if err != nil {
		return badRequest(c, "Invalid paging parameters", err)
	}
	page, err := h.service.SearchProducts(c.UserContext(), c.Query("name"), c.Query("category"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deactivates a product that has no stock left.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
