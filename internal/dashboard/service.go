// Package dashboard aggregates farm bookkeeping rows into the gher
// dashboard: revenue and expense summaries, monthly trends and pond
// breakdowns.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gherbooks/internal/farm"
	"gherbooks/internal/sales"
)

// cacheTTL bounds how stale a cached dashboard may be.
const cacheTTL = time.Minute

// Summary holds the headline figures.
type Summary struct {
	TotalPonds    int64   `json:"total_ponds"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	Profit        float64 `json:"profit"`
	MonthSales    float64 `json:"month_sales"`
	MonthExpenses float64 `json:"month_expenses"`
	MonthProfit   float64 `json:"month_profit"`
}

// MonthAmount is one point of a monthly trend.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// Trends groups the sales and expense trends.
type Trends struct {
	MonthlySales    []MonthAmount `json:"monthly_sales"`
	MonthlyExpenses []MonthAmount `json:"monthly_expenses"`
}

// PondSales is one pond's total sale amount.
type PondSales struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

// UnitSales is the sale volume and amount for one unit.
type UnitSales struct {
	UnitName string  `json:"unit_name"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// PondUnitSales is the sale volume for one pond/unit pair.
type PondUnitSales struct {
	PondName string  `json:"pond_name"`
	UnitName string  `json:"unit_name"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// Activity is one recent sale shown on the dashboard.
type Activity struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// Stats is the full dashboard response.
type Stats struct {
	Summary           Summary         `json:"summary"`
	Trends            Trends          `json:"trends"`
	TopPonds          []PondSales     `json:"top_ponds"`
	UnitWiseSales     []UnitSales     `json:"unit_wise_sales"`
	PondUnitBreakdown []PondUnitSales `json:"pond_unit_breakdown"`
	RecentActivities  []Activity      `json:"recent_activities"`
}

// Service computes dashboard stats, optionally serving them from a Redis
// read-through cache.
type Service struct {
	db     *gorm.DB
	cache  *redis.Client
	logger *zap.Logger
}

// NewService creates a dashboard Service. cache may be nil, in which case
// every request hits the database.
func NewService(db *gorm.DB, cache *redis.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: cache, logger: logger}
}

func cacheKey(userID uint, from, to *time.Time) string {
	f, t := "", ""
	if from != nil {
		f = from.Format(time.RFC3339)
	}
	if to != nil {
		t = to.Format(time.RFC3339)
	}
	return fmt.Sprintf("gher:dashboard:%d:%s:%s", userID, f, t)
}

// Stats builds the dashboard for one user, bounded by the optional date
// range.
func (s *Service) Stats(ctx context.Context, userID uint, from, to *time.Time) (*Stats, error) {
	key := cacheKey(userID, from, to)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.compute(userID, from, to)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *Service) compute(userID uint, from, to *time.Time) (*Stats, error) {
	stats := &Stats{
		TopPonds:          []PondSales{},
		UnitWiseSales:     []UnitSales{},
		PondUnitBreakdown: []PondUnitSales{},
		RecentActivities:  []Activity{},
	}

	if err := s.db.Model(&farm.Pond{}).Where("user_id = ?", userID).Count(&stats.Summary.TotalPonds).Error; err != nil {
		return nil, fmt.Errorf("failed to count ponds: %w", err)
	}

	revenue, err := s.sumInRange(&sales.Sale{}, "total_amount", userID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.sumInRange(&farm.FeedPurchase{}, "total_amount", userID, from, to)
	if err != nil {
		return nil, err
	}
	stats.Summary.TotalRevenue = revenue
	stats.Summary.TotalExpenses = expenses
	stats.Summary.Profit = revenue - expenses

	end := time.Now()
	if to != nil {
		end = *to
	}
	thisMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	monthSales, err := s.sumInRange(&sales.Sale{}, "total_amount", userID, &thisMonth, nil)
	if err != nil {
		return nil, err
	}
	monthExpenses, err := s.sumInRange(&farm.FeedPurchase{}, "total_amount", userID, &thisMonth, nil)
	if err != nil {
		return nil, err
	}
	stats.Summary.MonthSales = monthSales
	stats.Summary.MonthExpenses = monthExpenses
	stats.Summary.MonthProfit = monthSales - monthExpenses

	for _, window := range MonthWindows(end, 6) {
		saleSum, err := s.sumInWindow(&sales.Sale{}, "total_amount", userID, window)
		if err != nil {
			return nil, err
		}
		stats.Trends.MonthlySales = append(stats.Trends.MonthlySales, MonthAmount{
			Month:  window.Label(),
			Amount: saleSum,
		})
		expenseSum, err := s.sumInWindow(&farm.FeedPurchase{}, "total_amount", userID, window)
		if err != nil {
			return nil, err
		}
		stats.Trends.MonthlyExpenses = append(stats.Trends.MonthlyExpenses, MonthAmount{
			Month:  window.Label(),
			Amount: expenseSum,
		})
	}

	itemJoin := s.db.Table("sale_items").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN ponds ON ponds.id = sale_items.pond_id").
		Where("sales.user_id = ?", userID)
	itemJoin = rangeScope(itemJoin, "sales.date", from, to)

	if err := itemJoin.Session(&gorm.Session{}).
		Select("ponds.name AS name, SUM(sale_items.amount) AS sales").
		Group("ponds.id, ponds.name").
		Order("sales DESC").
		Limit(5).
		Scan(&stats.TopPonds).Error; err != nil {
		return nil, fmt.Errorf("failed to rank ponds: %w", err)
	}

	if err := itemJoin.Session(&gorm.Session{}).
		Joins("JOIN units ON units.id = sale_items.unit_id").
		Select("units.name AS unit_name, SUM(sale_items.quantity) AS quantity, SUM(sale_items.amount) AS amount").
		Group("units.id, units.name").
		Scan(&stats.UnitWiseSales).Error; err != nil {
		return nil, fmt.Errorf("failed to break down units: %w", err)
	}

	if err := itemJoin.Session(&gorm.Session{}).
		Joins("JOIN units ON units.id = sale_items.unit_id").
		Select("ponds.name AS pond_name, units.name AS unit_name, SUM(sale_items.quantity) AS quantity, SUM(sale_items.amount) AS amount").
		Group("ponds.id, ponds.name, units.id, units.name").
		Scan(&stats.PondUnitBreakdown).Error; err != nil {
		return nil, fmt.Errorf("failed to break down pond units: %w", err)
	}

	var recent []sales.Sale
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}
	for _, sale := range recent {
		buyer := "Customer"
		if sale.BuyerName != nil && *sale.BuyerName != "" {
			buyer = *sale.BuyerName
		}
		amount, _ := sale.TotalAmount.Float64()
		stats.RecentActivities = append(stats.RecentActivities, Activity{
			ID:          sale.ID,
			Type:        "sale",
			Description: "Sale to " + buyer,
			Amount:      amount,
			Date:        sale.Date,
		})
	}

	return stats, nil
}

func rangeScope(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where(column+" >= ?", *from)
	}
	if to != nil {
		query = query.Where(column+" <= ?", *to)
	}
	return query
}

func (s *Service) sumInRange(model interface{}, column string, userID uint, from, to *time.Time) (float64, error) {
	var total float64
	query := rangeScope(s.db.Model(model).Where("user_id = ?", userID), "date", from, to)
	err := query.Select("COALESCE(SUM(" + column + "), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", column, err)
	}
	return total, nil
}

func (s *Service) sumInWindow(model interface{}, column string, userID uint, w Window) (float64, error) {
	var total float64
	err := s.db.Model(model).
		Where("user_id = ? AND date >= ? AND date < ?", userID, w.Start, w.End).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", column, err)
	}
	return total, nil
}
