package models

import "time"

// Settings holds the ERP Web API credentials. A single active record,
// edited from the dashboard and read by the report client on each
// token acquisition.
type Settings struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Company   string    `json:"company"`
	URL       string    `json:"url"` // base endpoint, e.g. https://erp.example.com
	Instance  string    `json:"instance"`
	Line      string    `json:"line"`
	GrantType string    `json:"grantType"`
	UpdatedAt time.Time `json:"updated_at"`
}
