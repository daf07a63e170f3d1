package recipient

// Recipient is an email address on the notification roster.
// Corresponds to the 'recipients' table.
type Recipient struct {
	ID    int64
	Email string
}
