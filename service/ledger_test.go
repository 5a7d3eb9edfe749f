package service

import (
	"testing"
	"time"

	"ledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func snapshotRows(values ...float64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "net_funds", "created_at"})
	for i, v := range values {
		rows.AddRow(i+1, v, time.Now())
	}
	return rows
}

func expenseRow(id uint, date time.Time, day, description string, amount float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "date", "day", "description", "amount", "created_at", "updated_at"}).
		AddRow(id, date, day, description, amount, time.Now(), time.Now())
}

func TestLedger_CurrentBalance_Empty(t *testing.T) {
	db, mock := setupMockDB(t)

	// 无任何快照时余额为 0
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows())

	balance, err := NewLedger(db).CurrentBalance()
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_SetInitialFunds(t *testing.T) {
	db, mock := setupMockDB(t)

	// 已有余额 500，注资 1000 → 追加快照 1500
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(500))
	mock.ExpectExec("INSERT INTO `net_funds`").
		WithArgs(1500.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	balance, err := NewLedger(db).SetInitialFunds(1000)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_SetInitialFunds_FirstFunding(t *testing.T) {
	db, mock := setupMockDB(t)

	// 快照表为空时从 0 开始累加
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows())
	mock.ExpectExec("INSERT INTO `net_funds`").
		WithArgs(1000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := NewLedger(db).SetInitialFunds(1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_SetInitialFunds_InvalidAmount(t *testing.T) {
	db, mock := setupMockDB(t)

	_, err := NewLedger(db).SetInitialFunds(0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewLedger(db).SetInitialFunds(-100)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// 校验失败时不应产生任何 SQL
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_AddExpense(t *testing.T) {
	db, mock := setupMockDB(t)

	// 余额 1000 扣减 200 → 快照 800，同一事务内写入支出行
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(1000))
	mock.ExpectExec("INSERT INTO `net_funds`").
		WithArgs(800.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO `expenses`").
		WithArgs(sqlmock.AnyArg(), "Tuesday", "Groceries", 200.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	expense, err := NewLedger(db).AddExpense(models.NewDate(2024, time.March, 5), "Groceries", 200)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", expense.Day)
	assert.Equal(t, "2024-03-05", expense.Date.String())
	assert.Equal(t, 200.0, expense.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_AddExpense_InsufficientFunds(t *testing.T) {
	db, mock := setupMockDB(t)

	// 余额 50 不足以扣减 100，事务整体回滚，不写任何行
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(50))
	mock.ExpectRollback()

	_, err := NewLedger(db).AddExpense(models.NewDate(2024, time.March, 5), "Groceries", 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_AddExpense_NoFundsYet(t *testing.T) {
	db, mock := setupMockDB(t)

	// 从未注资（余额 0）时任何支出都会被拒绝
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows())
	mock.ExpectRollback()

	_, err := NewLedger(db).AddExpense(models.NewDate(2024, time.March, 5), "Groceries", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_AddExpense_Validation(t *testing.T) {
	db, mock := setupMockDB(t)
	ledger := NewLedger(db)
	date := models.NewDate(2024, time.March, 5)

	_, err := ledger.AddExpense(date, "Groceries", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ledger.AddExpense(date, "Groceries", -10)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ledger.AddExpense(date, "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyDescription)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_EditExpense(t *testing.T) {
	db, mock := setupMockDB(t)

	// 金额 200 → 300，余额按差额 100 扣减：800 → 700
	oldDate := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRow(1, oldDate, "Tuesday", "Groceries", 200))
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(800))
	mock.ExpectExec("INSERT INTO `net_funds`").
		WithArgs(700.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expense, err := NewLedger(db).EditExpense(1, models.NewDate(2024, time.March, 5), "Groceries", 300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, expense.Amount)
	assert.Equal(t, "Tuesday", expense.Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_EditExpense_SameAmount(t *testing.T) {
	db, mock := setupMockDB(t)

	// 金额不变时不追加快照，只更新支出行
	oldDate := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRow(1, oldDate, "Tuesday", "Groceries", 200))
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(800))
	mock.ExpectExec("UPDATE `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expense, err := NewLedger(db).EditExpense(1, models.NewDate(2024, time.March, 6), "Groceries", 200)
	require.NoError(t, err)
	// 日期变化时星期必须重新计算
	assert.Equal(t, "Wednesday", expense.Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_EditExpense_InsufficientFunds(t *testing.T) {
	db, mock := setupMockDB(t)

	// 差额 400 超过余额 100，编辑与新增使用同一资金检查
	oldDate := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRow(1, oldDate, "Tuesday", "Groceries", 100))
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(100))
	mock.ExpectRollback()

	_, err := NewLedger(db).EditExpense(1, models.NewDate(2024, time.March, 5), "Groceries", 500)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_EditExpense_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := NewLedger(db).EditExpense(99, models.NewDate(2024, time.March, 5), "Groceries", 100)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_DeleteExpense(t *testing.T) {
	db, mock := setupMockDB(t)

	// 删除返还 300：700 → 1000，恰好回到新增前的余额
	oldDate := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRow(1, oldDate, "Tuesday", "Groceries", 300))
	mock.ExpectExec("DELETE FROM `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(700))
	mock.ExpectExec("INSERT INTO `net_funds`").
		WithArgs(1000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	err := NewLedger(db).DeleteExpense(1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_DeleteExpense_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := NewLedger(db).DeleteExpense(99)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_ListExpenses(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "day", "description", "amount", "created_at", "updated_at"}).
			AddRow(2, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), "Monday", "Water bill", 120, time.Now(), time.Now()).
			AddRow(1, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local), "Friday", "Groceries", 80, time.Now(), time.Now()))

	expenses, err := NewLedger(db).ListExpenses(ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "2024-04-01", expenses[0].Date.String())
	assert.Equal(t, "2024-03-01", expenses[1].Date.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_ListExpenses_MonthFilter(t *testing.T) {
	db, mock := setupMockDB(t)

	// 只返回 2024-03 的记录
	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE DATE_FORMAT").
		WithArgs("2024-03").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "day", "description", "amount", "created_at", "updated_at"}).
			AddRow(1, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local), "Friday", "Groceries", 80, time.Now(), time.Now()))

	expenses, err := NewLedger(db).ListExpenses(ExpenseFilter{MonthYear: "2024-03"})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "2024-03-01", expenses[0].Date.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_ListExpenses_MinAmountFilter(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE amount >=").
		WithArgs(100.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "day", "description", "amount", "created_at", "updated_at"}).
			AddRow(2, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), "Monday", "Water bill", 120, time.Now(), time.Now()))

	expenses, err := NewLedger(db).ListExpenses(ExpenseFilter{MinAmount: 100})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 120.0, expenses[0].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_MonthSummary(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("2024-03").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(amount), 0)"}).AddRow(300.0))
	mock.ExpectQuery("SELECT count").
		WithArgs("2024-03").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `net_funds`").
		WillReturnRows(snapshotRows(700))

	summary, err := NewLedger(db).MonthSummary("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 300.0, summary.TotalExpense)
	assert.Equal(t, int64(2), summary.Count)
	assert.Equal(t, 700.0, summary.NetFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}
