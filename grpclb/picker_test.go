package grpclb

import (
	"context"
	"testing"

	"github.com/source-build/go-flb/flb"
	c "github.com/smartystreets/goconvey/convey"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/resolver"
)

// fakeSubConn satisfies balancer.SubConn with no-op behavior; Pick never
// needs it to do anything but identify which endpoint was chosen.
type fakeSubConn struct{ addr string }

func (f *fakeSubConn) UpdateAddresses([]resolver.Address) {}
func (f *fakeSubConn) Connect()                           {}

func TestPickerSingleEndpointFastPath(t *testing.T) {
	sc := &fakeSubConn{addr: "10.0.0.1:9000"}
	ep := flb.NewStaticEndpoint("10.0.0.1:9000", 0)

	p := &picker{
		dispatcher: flb.NewDispatcher(flb.NewRandomPolicy()),
		endpoints:  []flb.Endpoint{ep},
		byAddress:  map[string]balancer.SubConn{"10.0.0.1:9000": sc},
	}

	c.Convey("a single ready endpoint is always picked", t, func() {
		result, err := p.Pick(balancer.PickInfo{FullMethodName: "/pay.OrderService/CreateOrder", Ctx: context.Background()})
		c.So(err, c.ShouldEqual, nil)
		c.So(result.SubConn, c.ShouldEqual, sc)
	})
}

func TestPickerNoReadyEndpoints(t *testing.T) {
	p := &picker{dispatcher: flb.NewDispatcher(flb.NewRandomPolicy())}

	c.Convey("an empty picker refuses every pick", t, func() {
		_, err := p.Pick(balancer.PickInfo{FullMethodName: "/pay.OrderService/CreateOrder"})
		c.So(err, c.ShouldEqual, balancer.ErrNoSubConnAvailable)
	})
}

func TestPickerLeastActiveCounterLifecycle(t *testing.T) {
	scA := &fakeSubConn{addr: "10.0.0.1:9000"}
	scB := &fakeSubConn{addr: "10.0.0.2:9000"}
	epA := flb.NewStaticEndpoint("10.0.0.1:9000", 0)
	epB := flb.NewStaticEndpoint("10.0.0.2:9000", 0)

	counter := flb.NewInMemoryActiveCounter()
	counter.Inc("10.0.0.1:9000", "CreateOrder")
	counter.Inc("10.0.0.1:9000", "CreateOrder")

	p := &picker{
		dispatcher: flb.NewDispatcher(flb.NewLeastActivePolicy(counter)),
		endpoints:  []flb.Endpoint{epA, epB},
		byAddress: map[string]balancer.SubConn{
			"10.0.0.1:9000": scA,
			"10.0.0.2:9000": scB,
		},
		counter: counter,
	}

	c.Convey("the idle endpoint is picked and its count rises then falls on completion", t, func() {
		result, err := p.Pick(balancer.PickInfo{FullMethodName: "/pay.OrderService/CreateOrder", Ctx: context.Background()})
		c.So(err, c.ShouldEqual, nil)
		c.So(result.SubConn, c.ShouldEqual, scB)
		c.So(counter.Get("10.0.0.2:9000", "CreateOrder"), c.ShouldEqual, 1)

		result.Done(balancer.DoneInfo{})
		c.So(counter.Get("10.0.0.2:9000", "CreateOrder"), c.ShouldEqual, 0)
	})
}
