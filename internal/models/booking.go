package models

import "time"

type BookingStatus string

const StatusConfirmed BookingStatus = "confirmed"

type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;uniqueIndex:idx_booking_user_event,priority:1" json:"user_id"`
	EventID     uint          `gorm:"not null;uniqueIndex:idx_booking_user_event,priority:2;index" json:"event_id"`
	BookingDate time.Time     `gorm:"not null" json:"booking_date"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
}

func (Booking) TableName() string {
	return "booking"
}

// BookingDetail is a booking joined with the headline fields of its event.
type BookingDetail struct {
	Booking
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	DayNight DayNight `gorm:"column:day_night" json:"day_night"`
}
