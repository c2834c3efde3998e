package domain

// ModeratorInteraction is one logged moderator action not tied to a ticket.
type ModeratorInteraction struct {
	ID                uint         `gorm:"column:id;primaryKey;autoIncrement"`
	ModeratorName     string       `gorm:"column:moderator_name"`
	DateOfInteraction CalendarDate `gorm:"column:date_of_interaction"`
	InteractionType   string       `gorm:"column:interaction_type"`
}

// TableName implements schema.Tabler.
func (ModeratorInteraction) TableName() string { return "interactions" }

// InteractionInput carries raw field values for a new interaction.
type InteractionInput struct {
	ModeratorName   string
	Date            any
	InteractionType string
}

// NewModeratorInteraction applies the same date rule as NewTicket.
func NewModeratorInteraction(in InteractionInput) ModeratorInteraction {
	return ModeratorInteraction{
		ModeratorName:     in.ModeratorName,
		DateOfInteraction: ToCalendarDate(in.Date),
		InteractionType:   in.InteractionType,
	}
}
