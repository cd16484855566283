package executor

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

// MySQLExecutor runs synthesized SELECT statements against the analytics
// database.
type MySQLExecutor struct {
	db *gorm.DB
}

func NewMySQLExecutor(db *gorm.DB) *MySQLExecutor {
	return &MySQLExecutor{db: db}
}

func (e *MySQLExecutor) Execute(ctx context.Context, plan *pipeline.Plan) ([]map[string]interface{}, error) {
	if plan.SQL == nil {
		return nil, fmt.Errorf("plan has no sql query")
	}

	var rows []map[string]interface{}
	if err := e.db.WithContext(ctx).Raw(plan.SQL.SQL, plan.SQL.Args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("mysql query: %w", err)
	}
	return rows, nil
}

// Product is the catalog row in the analytics database.
type Product struct {
	Code        string  `gorm:"column:code;primaryKey"`
	EAN         string  `gorm:"column:ean"`
	Description string  `gorm:"column:description"`
	PVP         float64 `gorm:"column:pvp"`
}

func (Product) TableName() string {
	return "products"
}

// GormProductCatalog implements resolver.ProductCatalog over the products
// table.
type GormProductCatalog struct {
	db *gorm.DB
}

func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

func (c *GormProductCatalog) ByCode(ctx context.Context, code string) (*resolver.ProductMatch, error) {
	var p Product
	err := c.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog by code: %w", err)
	}
	return toMatch(p), nil
}

func (c *GormProductCatalog) ByEAN(ctx context.Context, ean string) (*resolver.ProductMatch, error) {
	var p Product
	err := c.db.WithContext(ctx).Where("ean = ?", ean).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog by ean: %w", err)
	}
	return toMatch(p), nil
}

func (c *GormProductCatalog) SearchByDescription(ctx context.Context, text string) ([]resolver.ProductMatch, error) {
	var products []Product
	err := c.db.WithContext(ctx).
		Where("description LIKE ?", "%"+text+"%").
		Limit(25).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	matches := make([]resolver.ProductMatch, len(products))
	for i, p := range products {
		matches[i] = *toMatch(p)
	}
	return matches, nil
}

func toMatch(p Product) *resolver.ProductMatch {
	return &resolver.ProductMatch{
		Code:        p.Code,
		EAN:         p.EAN,
		Description: p.Description,
	}
}
