package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueue", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop events in time order", func() {
		e1 := NewEventBase(3.0, nil)
		e2 := NewEventBase(1.0, nil)
		e3 := NewEventBase(2.0, nil)

		queue.Push(e1)
		queue.Push(e2)
		queue.Push(e3)

		Expect(queue.Len()).To(Equal(3))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(2.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(3.0)))
	})

	It("should peek without removing", func() {
		e1 := NewEventBase(1.0, nil)
		queue.Push(e1)

		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Len()).To(Equal(1))
	})
})
