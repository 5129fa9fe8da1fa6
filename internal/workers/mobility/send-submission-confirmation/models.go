package sendsubmissionconfirmation

// Input matches the process variables set when a submission is saved.
type Input struct {
	DatabaseID  string `json:"databaseId"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Nationality string `json:"nationality"`
	School1     string `json:"school1"`
	School2     string `json:"school2"`
	CreatedAt   string `json:"createdAt"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	StaffMessageID string `json:"staffMessageId,omitempty"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}

const (
	StatusSent     = "SENT"
	StatusPartial  = "PARTIAL"
	StatusDisabled = "DISABLED"
)
