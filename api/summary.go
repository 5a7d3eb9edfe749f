package api

import (
	"github.com/gin-gonic/gin"
)

// GetSummary 获取支出汇总
// @Summary 获取支出汇总
// @Description 统计指定年月的支出总额和笔数，并返回当前净资金。不传 month_year 则统计全部时间。
// @Tags 统计
// @Produce json
// @Param month_year query string false "年月 (2024-03)"
// @Success 200 {object} Response{data=service.Summary} "获取成功"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/statistics/summary [get]
func (h *ExpenseHandler) GetSummary(c *gin.Context) {
	summary, err := h.ledger.MonthSummary(c.Query("month_year"))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	Success(c, summary)
}
