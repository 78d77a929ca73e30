package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/middleware"
	"bookstore-api/internal/usecase/book"
	"bookstore-api/pkg/utils"
)

type BookHandler struct {
	service *book.Service
}

func NewBookHandler(service *book.Service) *BookHandler {
	return &BookHandler{service: service}
}

func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/book", h.GetAllBooks)
}

// RegisterProtectedRoutes expects router to run Authenticate.
func (h *BookHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/book/:id", h.GetBook)
}

// RegisterAdminRoutes expects router to run Authenticate and AdminOnly.
func (h *BookHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	bookGroup := router.Group("/book")
	{
		bookGroup.POST("", h.CreateBook)
		bookGroup.PATCH("/:id", h.UpdateBook)
		bookGroup.DELETE("/:id", h.DeleteBook)
	}
}

func (h *BookHandler) GetAllBooks(c *gin.Context) {
	books, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.ListResponse(len(books), gin.H{"books": books}).WithStatus(utils.StatusSuccess))
}

func (h *BookHandler) GetBook(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"book": b}))
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var in book.BookInput
	if !bindJSON(c, &in) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), &in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse(gin.H{"book": b}))
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	var in book.BookInput
	if !bindJSON(c, &in) {
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"book": b}))
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
