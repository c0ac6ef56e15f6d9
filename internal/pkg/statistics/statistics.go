package statistics

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/internal/pkg/cache"
	"github.com/pourhaus/pourhaus/internal/pkg/database"
)

const (
	CacheKeyMembersActive = "statistics:members:active"
	CacheKeyAppsPending   = "statistics:applications:pending"
	CacheKeyPoursDaily    = "statistics:pours:daily:%s" // Format with date YYYY-MM-DD
	CacheExpiration       = 5 * time.Minute
)

// DashboardStats holds the counters shown on the staff dashboard.
type DashboardStats struct {
	ActiveMembers       int `json:"active_members"`
	PendingApplications int `json:"pending_applications"`
	PoursToday          int `json:"pours_today"`
}

// GetDashboardStats returns all dashboard counters, each served from cache
// when present.
func GetDashboardStats() (*DashboardStats, error) {
	return &DashboardStats{
		ActiveMembers:       GetActiveMembers(),
		PendingApplications: GetPendingApplications(),
		PoursToday:          GetPoursToday(),
	}, nil
}

// GetActiveMembers returns the number of active customers from cache or database
func GetActiveMembers() int {
	val, err := cache.Get(CacheKeyMembersActive)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Customer{}).Where("status = ?", models.CustomerStatusActive).Count(&count).Error; err != nil {
			log.Printf("Error counting active members: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyMembersActive, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching active members: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetPendingApplications returns the review backlog size from cache or database
func GetPendingApplications() int {
	val, err := cache.Get(CacheKeyAppsPending)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Application{}).Where("status = ?", models.ApplicationStatusPending).Count(&count).Error; err != nil {
			log.Printf("Error counting pending applications: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyAppsPending, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching pending applications: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetPoursToday returns the number of pours redeemed today from cache or database
func GetPoursToday() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyPoursDaily, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.PourRecord{}).
			Where("status = ? AND poured_at BETWEEN ? AND ?", models.PourStatusRedeemed, todayStart, todayEnd).
			Count(&count).Error; err != nil {
			log.Printf("Error counting today's pours: %v", err)
			return 0
		}

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's pours: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}
