package memrepo

import (
	"sync"

	"github.com/google/uuid"
)

// Notification - записанное уведомление. Для администраторов UserID пустой.
type Notification struct {
	UserID uuid.UUID
	Admins bool
	Name   string
	Data   any
}

// Recorder реализует event.Notifier и запоминает отправленные уведомления.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) NotifyUser(userID uuid.UUID, name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{UserID: userID, Name: name, Data: data})
}

func (r *Recorder) NotifyAdmins(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{Admins: true, Name: name, Data: data})
}

func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Named возвращает уведомления с указанным именем события.
func (r *Recorder) Named(name string) []Notification {
	var result []Notification
	for _, n := range r.Sent() {
		if n.Name == name {
			result = append(result, n)
		}
	}
	return result
}
