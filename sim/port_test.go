package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type sampleMsg struct {
	MsgMeta
}

func newSampleMsg() *sampleMsg {
	m := &sampleMsg{}
	return m
}

func (m *sampleMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

func (m *sampleMsg) Clone() Msg {
	cloneMsg := *m
	cloneMsg.ID = GetIDGenerator().Generate()

	return &cloneMsg
}

var _ = Describe("DefaultPort", func() {
	var (
		mockController *gomock.Controller
		comp           *MockComponent
		conn           *MockConnection
		port           *defaultPort
	)

	BeforeEach(func() {
		mockController = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockController)
		conn = NewMockConnection(mockController)
		port = NewPort(comp, 4, 4, "Port").(*defaultPort)
		port.SetConnection(conn)
	})

	AfterEach(func() {
		mockController.Finish()
	})

	It("should return component", func() {
		Expect(port.Component()).To(BeIdenticalTo(comp))
	})

	It("should return name", func() {
		Expect(port.Name()).To(Equal("Port"))
	})

	It("should panic if port is not msg src", func() {
		msg := newSampleMsg()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should panic if msg dst is not set", func() {
		msg := newSampleMsg()
		msg.Src = port.AsRemote()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should panic if msg src is the same as dst", func() {
		msg := newSampleMsg()
		msg.Src = port.AsRemote()
		msg.Dst = port.AsRemote()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should send", func() {
		msg := newSampleMsg()
		msg.Src = port.AsRemote()
		msg.Dst = "AnotherPort"

		conn.EXPECT().NotifySend()

		err := port.Send(msg)

		Expect(err).To(BeNil())
		Expect(port.outgoingBuf.Size()).To(Equal(1))
	})

	It("should fail to send if the outgoing buffer is full", func() {
		conn.EXPECT().NotifySend()

		for i := 0; i < 4; i++ {
			msg := newSampleMsg()
			msg.Src = port.AsRemote()
			msg.Dst = "AnotherPort"
			port.Send(msg)
		}

		msg := newSampleMsg()
		msg.Src = port.AsRemote()
		msg.Dst = "AnotherPort"

		err := port.Send(msg)

		Expect(err).NotTo(BeNil())
		Expect(port.CanSend()).To(BeFalse())
	})

	It("should deliver and notify the component", func() {
		msg := newSampleMsg()
		msg.Dst = port.AsRemote()

		comp.EXPECT().NotifyRecv(port)

		err := port.Deliver(msg)

		Expect(err).To(BeNil())
		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg))
	})

	It("should fail to deliver if the incoming buffer is full", func() {
		comp.EXPECT().NotifyRecv(port)

		for i := 0; i < 4; i++ {
			msg := newSampleMsg()
			msg.Dst = port.AsRemote()
			port.Deliver(msg)
		}

		msg := newSampleMsg()
		msg.Dst = port.AsRemote()

		err := port.Deliver(msg)

		Expect(err).NotTo(BeNil())
	})

	It("should notify the connection when an incoming buffer slot frees up",
		func() {
			comp.EXPECT().NotifyRecv(port)

			for i := 0; i < 4; i++ {
				msg := newSampleMsg()
				msg.Dst = port.AsRemote()
				port.Deliver(msg)
			}

			conn.EXPECT().NotifyAvailable(port)

			retrieved := port.RetrieveIncoming()

			Expect(retrieved).NotTo(BeNil())
			Expect(port.incomingBuf.Size()).To(Equal(3))
		})
})
