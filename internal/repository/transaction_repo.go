package repository

import (
	"time"

	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.Transaction) error
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindAll(filter TransactionFilter) ([]model.Transaction, error)
	FindRecent(limit int) ([]model.Transaction, error)
	FindWithItems(category model.TransactionCategory, projectIDs []uuid.UUID) ([]model.Transaction, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	FindItemForUpdate(tx *gorm.DB, itemID uint) (*model.TransactionItem, error)
	UpdateItemStatus(tx *gorm.DB, itemID uint, status model.ItemStatus) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)
	SumByCategory(projectID *uuid.UUID) (map[model.TransactionCategory]decimal.Decimal, error)
	SumByProject() (map[uuid.UUID]map[model.TransactionCategory]decimal.Decimal, error)
	FindSince(since time.Time) ([]model.Transaction, error)
}

type TransactionFilter struct {
	ProjectID *uuid.UUID
	Category  string
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Create(transaction).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := preloadItems(r.db).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := preloadItems(r.db)
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	err := q.Order("transaction_date DESC").Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindRecent(limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := preloadItems(r.db).Order("created_at DESC").Limit(limit).Find(&transactions).Error
	return transactions, err
}

// FindWithItems loads transactions of one category, optionally restricted to a set of projects.
// A non-nil empty projectIDs matches nothing.
func (r *transactionRepo) FindWithItems(category model.TransactionCategory, projectIDs []uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	if projectIDs != nil && len(projectIDs) == 0 {
		return transactions, nil
	}
	q := preloadItems(r.db).Where("category = ?", category)
	if projectIDs != nil {
		q = q.Where("project_id IN ?", projectIDs)
	}
	err := q.Order("transaction_date DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.Model(&model.Transaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindItemForUpdate reads one item row under a row lock inside tx.
func (r *transactionRepo) FindItemForUpdate(tx *gorm.DB, itemID uint) (*model.TransactionItem, error) {
	var item model.TransactionItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *transactionRepo) UpdateItemStatus(tx *gorm.DB, itemID uint, status model.ItemStatus) error {
	return tx.Model(&model.TransactionItem{}).Where("id = ?", itemID).Update("status", status).Error
}

func (r *transactionRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionItem{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *transactionRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	ids := tx.Model(&model.Transaction{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("transaction_id IN (?)", ids).Delete(&model.TransactionItem{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("project_id = ?", projectID).Delete(&model.Transaction{})
	return res.RowsAffected, res.Error
}

// SumByCategory totals transaction amounts per category, for one project or all of them.
func (r *transactionRepo) SumByCategory(projectID *uuid.UUID) (map[model.TransactionCategory]decimal.Decimal, error) {
	q := r.db.Model(&model.Transaction{}).Select("category, COALESCE(SUM(amount), 0) AS total")
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	rows, err := q.Group("category").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[model.TransactionCategory]decimal.Decimal)
	for rows.Next() {
		var category string
		var total decimal.Decimal
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		sums[model.TransactionCategory(category)] = total
	}
	return sums, rows.Err()
}

// SumByProject totals transaction amounts per project and category.
func (r *transactionRepo) SumByProject() (map[uuid.UUID]map[model.TransactionCategory]decimal.Decimal, error) {
	rows, err := r.db.Model(&model.Transaction{}).
		Select("project_id, category, COALESCE(SUM(amount), 0) AS total").
		Group("project_id, category").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]map[model.TransactionCategory]decimal.Decimal)
	for rows.Next() {
		var projectID uuid.UUID
		var category string
		var total decimal.Decimal
		if err := rows.Scan(&projectID, &category, &total); err != nil {
			return nil, err
		}
		if sums[projectID] == nil {
			sums[projectID] = make(map[model.TransactionCategory]decimal.Decimal)
		}
		sums[projectID][model.TransactionCategory(category)] = total
	}
	return sums, rows.Err()
}

func (r *transactionRepo) FindSince(since time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.Select("id", "project_id", "category", "amount", "transaction_date").
		Where("transaction_date >= ?", since).
		Order("transaction_date ASC").
		Find(&transactions).Error
	return transactions, err
}
