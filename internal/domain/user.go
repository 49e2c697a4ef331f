package domain

// UserSettings holds per chat user preferences of the bot front end.
type UserSettings struct {
	UserID  int64
	ModelID ModelID
}
