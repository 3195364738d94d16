package catalog

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"booklend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 閲覧系（認証不要）
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/books", h.ListBooks)
	r.GET("/categories", h.ListCategories)
	r.GET("/books/:title", h.GetBook)
}

// RegisterAdminRoutes: 在庫追加（admin のみ）
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/books", h.CreateBook)
	r.POST("/books/:title/copies", h.AddCopies)
}

func (h *Handler) ListBooks(c *gin.Context) {
	res, err := h.svc.ListBooks(c.Request.Context(), c.DefaultQuery("category", CategoryAll))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListCategories(c *gin.Context) {
	res, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h *Handler) GetBook(c *gin.Context) {
	res, err := h.svc.GetBook(c.Request.Context(), c.Param("title"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.AddBook(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+url.PathEscape(res.Title))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) AddCopies(c *gin.Context) {
	var req AddCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.AddCopies(c.Request.Context(), c.Param("title"), req.Copies)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// ドメイン外のエラーは詳細を返さずログにだけ残す
func writeError(c *gin.Context, err error) {
	status := toHTTPStatus(err)
	var api *APIError
	if errors.As(err, &api) && status != http.StatusInternalServerError {
		c.JSON(status, apiErr(api.Code, api.Message))
		return
	}
	log.Printf("[ERROR] request_id=%s %s %s: %v", httpx.RequestIDFrom(c), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, apiErr(CodeInternal, "operation failed, try again"))
}
