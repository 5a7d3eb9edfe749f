package api

import (
	"errors"

	"ledger/service"

	"github.com/gin-gonic/gin"
)

// FundsHandler 净资金处理器
type FundsHandler struct {
	ledger *service.Ledger
}

// NewFundsHandler 创建净资金处理器
func NewFundsHandler(ledger *service.Ledger) *FundsHandler {
	return &FundsHandler{ledger: ledger}
}

// NetFundsResponse 净资金返回
type NetFundsResponse struct {
	NetFunds float64 `json:"net_funds" example:"1000.00"`
}

// SetInitialFundsRequest 注资请求
type SetInitialFundsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"1000"`
}

// GetNetFunds 获取当前净资金
// @Summary 获取当前净资金
// @Description 返回最新余额快照的值，尚无任何快照时返回 0
// @Tags 净资金
// @Produce json
// @Success 200 {object} Response{data=NetFundsResponse} "获取成功"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/funds [get]
func (h *FundsHandler) GetNetFunds(c *gin.Context) {
	balance, err := h.ledger.CurrentBalance()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询净资金失败"))
		return
	}
	Success(c, NetFundsResponse{NetFunds: balance})
}

// SetInitialFunds 注资
// @Summary 注资
// @Description 在当前余额上追加指定金额并返回新余额，金额必须为正数
// @Tags 净资金
// @Accept json
// @Produce json
// @Param request body SetInitialFundsRequest true "注资金额"
// @Success 200 {object} Response{data=NetFundsResponse} "注资成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/funds [post]
func (h *FundsHandler) SetInitialFunds(c *gin.Context) {
	var req SetInitialFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "金额必须为正数")
		return
	}

	balance, err := h.ledger.SetInitialFunds(req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, SafeErrorMessage(err, "注资失败"))
		return
	}
	SuccessWithMessage(c, "净资金更新成功", NetFundsResponse{NetFunds: balance})
}
