package models

// DashboardStats — сводка для главной страницы админки.
type DashboardStats struct {
	TotalUsers      int                 `json:"totalUsers"`
	TotalProducts   int                 `json:"totalProducts"`
	TotalOrders     int                 `json:"totalOrders"`
	OrdersByStatus  map[OrderStatus]int `json:"ordersByStatus"`
	PendingPayments int                 `json:"pendingPayments"`
	Revenue         int64               `json:"revenue"`
	RecentOrders    []*Order            `json:"recentOrders"`
}
