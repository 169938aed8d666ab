package notification

// MockNotifier records deliveries instead of sending them, so tests can
// assert on recipients and template data (e.g. the one-time code).
type MockNotifier struct {
	SentNotifications []NotificationData
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}

// Last returns the most recently recorded delivery, if any.
func (m *MockNotifier) Last() (NotificationData, bool) {
	if len(m.SentNotifications) == 0 {
		return NotificationData{}, false
	}
	return m.SentNotifications[len(m.SentNotifications)-1], true
}
