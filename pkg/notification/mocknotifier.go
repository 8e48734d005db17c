package notification

import (
	"context"
	"sync"
)

type SentNotice struct {
	Type NoticeType
	Data NotificationData
}

// MockNotifier records every notice instead of sending it. Err, when set, is
// returned from Send after recording.
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotice
	Err  error
}

func (m *MockNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotice{Type: noticeType, Data: notification})
	return m.Err
}

func (m *MockNotifier) Sent() []SentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotice, len(m.sent))
	copy(out, m.sent)
	return out
}
