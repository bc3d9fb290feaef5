package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
)

// AdjustStockRequest represents the request body for PATCH /admin/products/:id/stock
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func productService() *services.ProductService {
	return services.NewProductService(config.GetDB())
}

// ListProducts handles GET /api/v1/products - the published catalog
func ListProducts(c *gin.Context) {
	page := utils.ParsePage(c)
	result, err := productService().ListPublished(c.Request.Context(), services.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Badge:    c.Query("badge"),
		Page:     page,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to list products")
		return
	}
	utils.RespondPage(c, http.StatusOK, result.Items, page, result.Total)
}

// GetProduct handles GET /api/v1/products/:slug
func GetProduct(c *gin.Context) {
	product, err := productService().GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "Failed to load product")
		return
	}
	utils.RespondData(c, http.StatusOK, product)
}

// AdminListProducts handles GET /api/v1/admin/products?published=&low_stock=
func AdminListProducts(c *gin.Context) {
	page := utils.ParsePage(c)
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Badge:    c.Query("badge"),
		Page:     page,
	}
	if v := c.Query("published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "published must be true or false")
			return
		}
		filter.Published = &published
	}
	if v := c.Query("low_stock"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil || threshold < 0 {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "low_stock must be a non-negative number")
			return
		}
		filter.LowStock = &threshold
	}

	result, err := productService().List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to list products")
		return
	}
	utils.RespondPage(c, http.StatusOK, result.Items, page, result.Total)
}

// AdminGetProduct handles GET /api/v1/admin/products/:id
func AdminGetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	product, err := productService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load product")
		return
	}
	utils.RespondData(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/admin/products
func CreateProduct(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	product, err := productService().Create(c.Request.Context(), admin, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create product")
		return
	}
	utils.RespondData(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/admin/products/:id - only supplied fields change
func UpdateProduct(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	product, err := productService().Update(c.Request.Context(), admin, id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update product")
		return
	}
	utils.RespondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/:id
func DeleteProduct(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := productService().Delete(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete product")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// UploadProductImage handles POST /api/v1/admin/products/:id/image (multipart field "image")
func UploadProductImage(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the \"image\" field")
		return
	}

	product, err := productService().SetImage(c.Request.Context(), admin, id, fileHeader)
	if err != nil {
		respondServiceError(c, err, "Failed to upload product image")
		return
	}
	utils.RespondData(c, http.StatusOK, product)
}

// AdjustProductStock handles PATCH /api/v1/admin/products/:id/stock
func AdjustProductStock(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	product, err := productService().AdjustStock(c.Request.Context(), admin, id, req.Delta)
	if err != nil {
		respondServiceError(c, err, "Failed to adjust stock")
		return
	}
	utils.RespondData(c, http.StatusOK, product)
}
