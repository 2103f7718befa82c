package events

// SubscribeToChannel forwards events of type T into ch for consumers that
// prefer a select loop. Events are dropped while ch is full so a slow
// reader never stalls the publisher.
func SubscribeToChannel[T Event](b *Bus, ch chan<- T) func() {
	return Subscribe(b, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}

// Forward is SubscribeToChannel for a channel shared by several event
// types, such as one feeding a server-sent event stream.
func Forward[T Event](b *Bus, ch chan<- any) func() {
	return Subscribe(b, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
