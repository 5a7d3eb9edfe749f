package api

import (
	"errors"
	"strconv"

	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 支出记录处理器
type ExpenseHandler struct {
	ledger *service.Ledger
}

// NewExpenseHandler 创建支出记录处理器
func NewExpenseHandler(ledger *service.Ledger) *ExpenseHandler {
	return &ExpenseHandler{ledger: ledger}
}

// ExpenseRequest 新增/编辑支出记录请求
type ExpenseRequest struct {
	Date        string  `json:"date" binding:"required" example:"2024-03-05"`
	Description string  `json:"description" binding:"required" example:"物业维修"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"200.00"`
}

// ExpenseListRequest 支出记录列表请求
type ExpenseListRequest struct {
	MonthYear string  `form:"month_year" example:"2024-03"`
	MinAmount float64 `form:"min_amount" example:"100"`
}

// writeExpenseError 将业务错误映射为 HTTP 响应
func writeExpenseError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrEmptyDescription):
		BadRequest(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// Create 新增支出记录
// @Summary 新增支出记录
// @Description 新增一条支出记录并从净资金中扣减对应金额，余额不足时拒绝且不写入任何数据
// @Tags 支出记录
// @Accept json
// @Produce json
// @Param request body ExpenseRequest true "支出记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误或余额不足"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	expense, err := h.ledger.AddExpense(date, req.Description, req.Amount)
	if err != nil {
		writeExpenseError(c, err, "创建支出记录失败")
		return
	}
	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取支出记录列表
// @Summary 获取支出记录列表
// @Description 获取支出记录列表，支持按年月和最小金额筛选，按日期倒序排列
// @Tags 支出记录
// @Produce json
// @Param month_year query string false "年月筛选 (2024-03)"
// @Param min_amount query number false "最小金额筛选"
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	expenses, err := h.ledger.ListExpenses(service.ExpenseFilter{
		MonthYear: req.MonthYear,
		MinAmount: req.MinAmount,
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, expenses)
}

// Get 获取单条支出记录
// @Summary 获取单条支出记录
// @Description 根据 ID 获取支出记录详情
// @Tags 支出记录
// @Produce json
// @Param id path int true "支出记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	expense, err := h.ledger.GetExpense(uint(id))
	if err != nil {
		writeExpenseError(c, err, "查询失败")
		return
	}
	Success(c, expense)
}

// Update 编辑支出记录
// @Summary 编辑支出记录
// @Description 更新指定支出记录的日期、描述和金额，净资金按新旧金额之差调整；差额导致余额为负时拒绝
// @Tags 支出记录
// @Accept json
// @Produce json
// @Param id path int true "支出记录ID"
// @Param request body ExpenseRequest true "支出记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误或余额不足"
// @Failure 404 {object} Response "记录不存在"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	expense, err := h.ledger.EditExpense(uint(id), date, req.Description, req.Amount)
	if err != nil {
		writeExpenseError(c, err, "更新失败")
		return
	}
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除支出记录
// @Summary 删除支出记录
// @Description 删除指定支出记录并把金额返还到净资金
// @Tags 支出记录
// @Produce json
// @Param id path int true "支出记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "记录不存在"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := h.ledger.DeleteExpense(uint(id)); err != nil {
		writeExpenseError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
