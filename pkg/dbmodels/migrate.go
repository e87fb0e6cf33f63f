package dbmodels

// All lists every table of the server, in creation order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Meeting{},
		&Speaker{},
		&MeetingContext{},
		&Transcript{},
		&MeetingSummary{},
	}
}
