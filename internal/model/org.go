package model

import (
	"time"

	"github.com/google/uuid"
)

// Province is one region-level unit of the organizational hierarchy.
// The ID is the short province code used throughout the system (e.g. "NMA").
type Province struct {
	ID        string     `gorm:"type:varchar(20);primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Region    string     `gorm:"type:varchar(50);index" json:"region"`
	Active    bool       `gorm:"default:true" json:"active"`
	ManagerID *uuid.UUID `gorm:"type:uuid" json:"manager_id"`
	Branches  []Branch   `gorm:"foreignKey:ProvinceID" json:"branches,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Branch belongs to exactly one province.
type Branch struct {
	Code          string    `gorm:"type:varchar(20);primaryKey" json:"code"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	ProvinceID    string    `gorm:"type:varchar(20);not null;index" json:"province_id"`
	Active        bool      `gorm:"default:true" json:"active"`
	WarehouseCode string    `gorm:"type:varchar(20)" json:"warehouse_code"`
	LocationCode  string    `gorm:"type:varchar(20)" json:"location_code"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Department is a flat unit, not nested under provinces.
type Department struct {
	Code      string    `gorm:"type:varchar(20);primaryKey" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
