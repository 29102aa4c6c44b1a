package mqtt

import "log"

// outbox holds messages waiting for the broker, oldest first. When full the
// oldest message is dropped.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	buf     []Message
	head    int // next write position
	count   int
	dropped int // total messages dropped since creation
	warned  bool
}

func newOutbox(capacity int) *outbox {
	return &outbox{buf: make([]Message, capacity)}
}

func (o *outbox) push(msg Message) {
	capacity := len(o.buf)
	if capacity == 0 {
		o.dropped++
		return
	}
	if o.count == capacity {
		if !o.warned {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", capacity)
			o.warned = true
		}
		o.dropped++
		o.buf[o.head] = msg
		o.head = (o.head + 1) % capacity
		return
	}
	o.buf[o.head] = msg
	o.head = (o.head + 1) % capacity
	o.count++
}

// peek returns the oldest queued message.
func (o *outbox) peek() (Message, bool) {
	if o.count == 0 {
		return Message{}, false
	}
	return o.buf[o.tail()], true
}

// pop removes the oldest queued message.
func (o *outbox) pop() {
	if o.count == 0 {
		return
	}
	o.buf[o.tail()] = Message{}
	o.count--
	if o.count == 0 {
		o.warned = false
	}
}

func (o *outbox) tail() int {
	capacity := len(o.buf)
	return (o.head - o.count + capacity) % capacity
}

func (o *outbox) len() int {
	return o.count
}
