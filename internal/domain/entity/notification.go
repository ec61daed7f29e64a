package entity

// Notification is a message sent to the operator
type Notification struct {
	Subject string
	Body    string
}
