package database

import "fmt"

// Custom errors
var ErrDuplicateRecipient = fmt.Errorf("recipient with this email already exists")
var ErrRecipientNotFound = fmt.Errorf("recipient not found")
