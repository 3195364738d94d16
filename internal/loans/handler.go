package loans

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"booklend/internal/platform/auth"
	"booklend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterRoutes は RequireAuth 配下のグループに載せること
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans", h.CreateLoan)
	r.GET("/loans", h.ListLoans)
	r.GET("/loans/:loan_id", h.GetLoan)
	r.POST("/loans/:loan_id/renewals", h.RenewLoan)
	r.POST("/loans/:loan_id/returns", h.ReturnLoan)
	r.DELETE("/loans/:loan_id", h.DeleteLoan)
}

// ---------- handlers ----------

// POST /loans
func (h *Handler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(KindInvalidArgument, "invalid json or missing book_title"))
		return
	}

	l, err := h.svc.CreateLoan(c.Request.Context(), auth.MemberID(c), req.BookTitle)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+l.ID)
	c.JSON(http.StatusCreated, l.toDTO(h.svc.Now()))
}

func (h *Handler) ListLoans(c *gin.Context) {
	items, err := h.svc.ListLoans(c.Request.Context(), auth.MemberID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	now := h.svc.Now()
	res := ListLoansResponse{Items: make([]LoanResponse, 0, len(items)), Total: len(items)}
	for _, l := range items {
		res.Items = append(res.Items, l.toDTO(now))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLoan(c *gin.Context) {
	l, err := h.svc.GetLoan(c.Request.Context(), auth.MemberID(c), c.Param("loan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l.toDTO(h.svc.Now()))
}

func (h *Handler) RenewLoan(c *gin.Context) {
	l, err := h.svc.RenewLoan(c.Request.Context(), auth.MemberID(c), c.Param("loan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l.toDTO(h.svc.Now()))
}

func (h *Handler) ReturnLoan(c *gin.Context) {
	l, err := h.svc.ReturnLoan(c.Request.Context(), auth.MemberID(c), c.Param("loan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l.toDTO(h.svc.Now()))
}

func (h *Handler) DeleteLoan(c *gin.Context) {
	if err := h.svc.DeleteLoan(c.Request.Context(), auth.MemberID(c), c.Param("loan_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Kind   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(kind Kind, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = kind
	e.Error.Message = msg
	return e
}

// 業務エラーはそのまま、それ以外は汎用メッセージに置き換える
func writeError(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.JSON(ToHTTPStatus(err), errorBody(ve.Kind, ve.Message))
		return
	}
	log.Printf("[ERROR] request_id=%s %s %s: %v", httpx.RequestIDFrom(c), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "operation failed, try again"))
}
