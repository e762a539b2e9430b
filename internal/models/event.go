package models

type DayNight string

const (
	Day   DayNight = "day"
	Night DayNight = "night"
)

type Event struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"not null" json:"title" validate:"required"`
	Location    string   `gorm:"not null" json:"location" validate:"required"`
	Description *string  `json:"description"`
	Date        string   `gorm:"not null;index:idx_event_schedule,priority:1" json:"date" validate:"required,datetime=2006-01-02"`
	Time        string   `gorm:"not null;index:idx_event_schedule,priority:2" json:"time" validate:"required,datetime=15:04"`
	DayNight    DayNight `gorm:"column:day_night;type:varchar(5);not null" json:"day_night" validate:"required,oneof=day night"`
	Fee         *float64 `gorm:"type:decimal(10,2)" json:"fee" validate:"omitempty,gte=0,lte=99999999.99"`
	ImagePath   *string  `json:"image_path"`
}

func (Event) TableName() string {
	return "event"
}

// HasImage reports whether the event references a stored image.
func (e *Event) HasImage() bool {
	return e.ImagePath != nil && *e.ImagePath != ""
}

// EventWithStatus is an Event annotated with whether a given user holds a
// booking for it.
type EventWithStatus struct {
	Event
	IsBooked bool `gorm:"column:is_booked" json:"is_booked"`
}
