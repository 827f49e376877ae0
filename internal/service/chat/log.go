package chat

import "github.com/sandevgo/drambot/internal/core"

// messageLog is the conversation arena: messages stored by id with a
// separate order slice. Replace and remove address messages by id, so a
// settling request never has to search the log for its placeholder.
type messageLog struct {
	byID  map[string]core.ChatMessage
	order []string
}

func newMessageLog() *messageLog {
	return &messageLog{byID: make(map[string]core.ChatMessage)}
}

func (l *messageLog) append(msg core.ChatMessage) {
	l.byID[msg.ID] = msg
	l.order = append(l.order, msg.ID)
}

// replace swaps the message stored under id, keeping its position.
func (l *messageLog) replace(id string, msg core.ChatMessage) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	msg.ID = id
	l.byID[id] = msg
	return true
}

func (l *messageLog) remove(id string) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	delete(l.byID, id)
	for i, mid := range l.order {
		if mid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// messages returns the log in append order. The slice is a copy.
func (l *messageLog) messages() []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *messageLog) restore(msgs []core.ChatMessage) {
	l.byID = make(map[string]core.ChatMessage, len(msgs))
	l.order = l.order[:0]
	for _, m := range msgs {
		l.append(m)
	}
}

func (l *messageLog) truncate() {
	l.byID = make(map[string]core.ChatMessage)
	l.order = nil
}

func (l *messageLog) len() int {
	return len(l.order)
}
