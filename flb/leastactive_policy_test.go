package flb

import (
	"testing"

	c "github.com/smartystreets/goconvey/convey"
)

type fixedActiveCounter map[string]int

func (f fixedActiveCounter) Get(address, methodName string) int {
	return f[address]
}

func TestLeastActivePicksTheIdleEndpoint(t *testing.T) {
	c.Convey("Given candidates A, B, C with active counts [3, 0, 3] and equal weight", t, func() {
		a := NewStaticEndpoint("A", 0).WithAttr("", "weight", 5)
		b := NewStaticEndpoint("B", 0).WithAttr("", "weight", 5)
		cp := NewStaticEndpoint("C", 0).WithAttr("", "weight", 5)
		candidates := []Endpoint{a, b, cp}
		counter := fixedActiveCounter{"A": 3, "B": 0, "C": 3}
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get"}
		p := NewLeastActivePolicy(counter)

		c.Convey("B is selected on every call", func() {
			for i := 0; i < 10; i++ {
				got, err := p.Select(candidates, target, inv)
				c.So(err, c.ShouldBeNil)
				c.So(got, c.ShouldEqual, b)
			}
		})
	})
}

func TestLeastActiveTiesBreakByWeight(t *testing.T) {
	c.Convey("Given two endpoints tied at the minimum active count with different weights", t, func() {
		a := NewStaticEndpoint("A", 0).WithAttr("", "weight", 9)
		b := NewStaticEndpoint("B", 0).WithAttr("", "weight", 1)
		candidates := []Endpoint{a, b}
		counter := fixedActiveCounter{"A": 1, "B": 1}
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get"}
		p := NewLeastActivePolicy(counter)
		p.intn = func(n int) int { return 0 }

		c.Convey("a weighted pick runs across only the tied candidates", func() {
			got, err := p.Select(candidates, target, inv)
			c.So(err, c.ShouldBeNil)
			c.So(got, c.ShouldEqual, a)
		})
	})
}

func TestLeastActiveSingleTieReturnsImmediately(t *testing.T) {
	c.Convey("Given exactly one endpoint at the strict minimum", t, func() {
		a := NewStaticEndpoint("A", 0)
		b := NewStaticEndpoint("B", 0)
		candidates := []Endpoint{a, b}
		counter := fixedActiveCounter{"A": 2, "B": 5}
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get"}
		p := NewLeastActivePolicy(counter)

		c.Convey("it is always selected", func() {
			got, err := p.Select(candidates, target, inv)
			c.So(err, c.ShouldBeNil)
			c.So(got, c.ShouldEqual, a)
		})
	})
}
