package models

// RoomIDs is the fixed operating-room pool, in scheduling preference order.
// The scheduler always tries rooms in this order.
var RoomIDs = []string{"OR-1", "OR-2", "OR-3", "OR-4", "OR-5"}

// Room represents the or_rooms table
// Rooms are a closed set seeded at startup; a room owns nothing but its bookings
type Room struct {
	ID   string `gorm:"primaryKey;size:20" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// TableName specifies the table name for Room model
func (Room) TableName() string {
	return "or_rooms"
}
