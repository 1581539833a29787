package trips

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title         string    `json:"title" gorm:"not null;size:255"`
	BusType       string    `json:"bus_type" gorm:"size:100"`
	RouteFrom     string    `json:"route_from" gorm:"not null;size:255"`
	RouteTo       string    `json:"route_to" gorm:"not null;size:255"`
	DepartAt      time.Time `json:"depart_at" gorm:"not null;index"`
	Price         int64     `json:"price" gorm:"not null;check:price >= 0"`
	CapacityTotal int       `json:"capacity_total" gorm:"default:0;check:capacity_total >= 0"`

	// WhatsApp handle passengers are pointed at after attaching contact info
	AdminWA string `json:"admin_wa" gorm:"size:32"`

	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Trip) TableName() string {
	return "trips"
}

type TripResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	BusType       string    `json:"bus_type"`
	RouteFrom     string    `json:"route_from"`
	RouteTo       string    `json:"route_to"`
	DepartAt      time.Time `json:"depart_at"`
	Price         int64     `json:"price"`
	CapacityTotal int       `json:"capacity_total"`
	AdminWA       string    `json:"admin_wa"`
	IsActive      bool      `json:"is_active"`
}

func (t *Trip) ToResponse() TripResponse {
	return TripResponse{
		ID:            t.ID.String(),
		Title:         t.Title,
		BusType:       t.BusType,
		RouteFrom:     t.RouteFrom,
		RouteTo:       t.RouteTo,
		DepartAt:      t.DepartAt,
		Price:         t.Price,
		CapacityTotal: t.CapacityTotal,
		AdminWA:       t.AdminWA,
		IsActive:      t.IsActive,
	}
}

type CreateTripRequest struct {
	Title     string    `json:"title" binding:"required,min=3,max=255"`
	BusType   string    `json:"bus_type" binding:"max=100"`
	RouteFrom string    `json:"route_from" binding:"required,min=2,max=255"`
	RouteTo   string    `json:"route_to" binding:"required,min=2,max=255"`
	DepartAt  time.Time `json:"depart_at" binding:"required"`
	Price     int64     `json:"price" binding:"required,min=0"`
	AdminWA   string    `json:"admin_wa" binding:"omitempty,max=32"`
}
