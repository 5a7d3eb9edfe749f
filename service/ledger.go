package service

import (
	"errors"
	"strings"

	"ledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 业务错误，由 API 层映射为对应的 HTTP 状态码
var (
	ErrInvalidAmount     = errors.New("金额必须为正数")
	ErrEmptyDescription  = errors.New("描述不能为空")
	ErrNotFound          = errors.New("记录不存在")
	ErrInsufficientFunds = errors.New("余额不足，净资金不能为负")
)

// Ledger 账本服务，维护支出记录与净资金余额的一致性。
// 每个变更操作（注资、新增、编辑、删除）在单个数据库事务内完成：
// 支出行的写入与余额快照的追加要么同时提交，要么同时回滚。
type Ledger struct {
	db *gorm.DB
}

// NewLedger 创建账本服务
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ExpenseFilter 支出记录筛选条件
type ExpenseFilter struct {
	MonthYear string  // 年月，格式 YYYY-MM，空则不筛选
	MinAmount float64 // 最小金额，0 则不筛选
}

// Summary 月度汇总
type Summary struct {
	MonthYear    string  `json:"month_year,omitempty"`
	TotalExpense float64 `json:"total_expense"`
	Count        int64   `json:"count"`
	NetFunds     float64 `json:"net_funds"`
}

// CurrentBalance 返回当前余额，即最新快照的值；无快照时为 0
func (l *Ledger) CurrentBalance() (float64, error) {
	return latestBalance(l.db)
}

func latestBalance(tx *gorm.DB) (float64, error) {
	var snap models.NetFundsSnapshot
	err := tx.Order("id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return snap.NetFunds, nil
}

// lockedBalance 在事务内对最新快照加行锁后读取余额，串行化并发变更
func lockedBalance(tx *gorm.DB) (float64, error) {
	var snap models.NetFundsSnapshot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return snap.NetFunds, nil
}

// applyDelta 余额调整的唯一入口。delta 为正表示扣减（新增支出或改大金额），
// 为负表示返还（删除支出、改小金额、注资）。扣减会使余额为负时整体拒绝。
// 新余额以追加快照的方式写入，不原地修改历史记录。
func applyDelta(tx *gorm.DB, delta float64) (float64, error) {
	current, err := lockedBalance(tx)
	if err != nil {
		return 0, err
	}
	if delta == 0 {
		return current, nil
	}
	next := current - delta
	if delta > 0 && next < 0 {
		return 0, ErrInsufficientFunds
	}
	snap := models.NetFundsSnapshot{NetFunds: next}
	if err := tx.Create(&snap).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// SetInitialFunds 注资：在当前余额上追加 amount，返回新余额。
// 注资只会增加余额，不做资金检查。
func (l *Ledger) SetInitialFunds(amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var balance float64
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = applyDelta(tx, -amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AddExpense 新增支出记录并扣减余额。余额不足时整体拒绝，不写任何行。
func (l *Ledger) AddExpense(date models.Date, description string, amount float64) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	expense := &models.Expense{
		Date:        date,
		Day:         date.Weekday().String(),
		Description: description,
		Amount:      amount,
	}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if _, err := applyDelta(tx, amount); err != nil {
			return err
		}
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// EditExpense 编辑支出记录。余额按新旧金额之差调整，差额导致余额为负时
// 与新增一样整体拒绝，保证 add/edit/delete 三条路径使用同一资金检查。
func (l *Ledger) EditExpense(id uint, date models.Date, description string, amount float64) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	var expense models.Expense
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := applyDelta(tx, amount-expense.Amount); err != nil {
			return err
		}
		expense.Date = date
		expense.Day = date.Weekday().String()
		expense.Description = description
		expense.Amount = amount
		return tx.Save(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense 删除支出记录并把金额返还到余额，返还不会失败于资金检查
func (l *Ledger) DeleteExpense(id uint) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.First(&expense, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&expense).Error; err != nil {
			return err
		}
		_, err := applyDelta(tx, -expense.Amount)
		return err
	})
}

// GetExpense 按 ID 获取单条支出记录
func (l *Ledger) GetExpense(id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := l.db.First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// ListExpenses 查询支出记录，按日期倒序，同日按插入顺序。
// 纯读操作，不产生任何副作用。
func (l *Ledger) ListExpenses(filter ExpenseFilter) ([]models.Expense, error) {
	query := l.db.Model(&models.Expense{})
	if filter.MonthYear != "" {
		query = query.Where("DATE_FORMAT(date, '%Y-%m') = ?", filter.MonthYear)
	}
	if filter.MinAmount > 0 {
		query = query.Where("amount >= ?", filter.MinAmount)
	}

	var expenses []models.Expense
	if err := query.Order("date DESC, id ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// MonthSummary 统计指定年月（空则全部时间）的支出总额、笔数和当前余额
func (l *Ledger) MonthSummary(monthYear string) (*Summary, error) {
	totalQuery := l.db.Model(&models.Expense{})
	countQuery := l.db.Model(&models.Expense{})
	if monthYear != "" {
		totalQuery = totalQuery.Where("DATE_FORMAT(date, '%Y-%m') = ?", monthYear)
		countQuery = countQuery.Where("DATE_FORMAT(date, '%Y-%m') = ?", monthYear)
	}

	var total float64
	if err := totalQuery.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return nil, err
	}
	var count int64
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, err
	}
	balance, err := l.CurrentBalance()
	if err != nil {
		return nil, err
	}

	return &Summary{
		MonthYear:    monthYear,
		TotalExpense: total,
		Count:        count,
		NetFunds:     balance,
	}, nil
}
