package notification

type NotificationResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	Type          string  `json:"type"`
	IsRead        bool    `json:"is_read"`
	ReferenceID   *string `json:"reference_id,omitempty"`
	ReferenceType *string `json:"reference_type,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}
