package flb

import (
	"fmt"
	"testing"

	c "github.com/smartystreets/goconvey/convey"
)

func fourCandidates() []Endpoint {
	return []Endpoint{
		NewStaticEndpoint("10.0.0.1:9000", 0),
		NewStaticEndpoint("10.0.0.2:9000", 0),
		NewStaticEndpoint("10.0.0.3:9000", 0),
		NewStaticEndpoint("10.0.0.4:9000", 0),
	}
}

func TestConsistentHashStickiness(t *testing.T) {
	c.Convey("Given candidates A,B,C,D and an invocation hashing argument 0", t, func() {
		candidates := fourCandidates()
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get", Arguments: []any{"user-42"}}
		p := NewConsistentHashPolicy()

		first, err := p.Select(candidates, target, inv)
		c.So(err, c.ShouldBeNil)

		c.Convey("repeated selection with the same argument returns the same endpoint", func() {
			for i := 0; i < 20; i++ {
				got, err := p.Select(candidates, target, inv)
				c.So(err, c.ShouldBeNil)
				c.So(got, c.ShouldEqual, first)
			}
		})
	})
}

func TestConsistentHashRedistributionOnRemoval(t *testing.T) {
	c.Convey("Given candidates A,B,C,D and 1000 distinct argument keys", t, func() {
		candidates := fourCandidates()
		target := ServiceTarget{ServiceKey: "svc"}
		p := NewConsistentHashPolicy()

		before := make(map[string]Endpoint, 1000)
		for i := 0; i < 1000; i++ {
			key := fmt.Sprintf("key-%d", i)
			ep, err := p.Select(candidates, target, Invocation{MethodName: "Get", Arguments: []any{key}})
			c.So(err, c.ShouldBeNil)
			before[key] = ep
		}

		removed := before["key-0"]
		remaining := make([]Endpoint, 0, len(candidates))
		for _, ep := range candidates {
			if ep != removed {
				remaining = append(remaining, ep)
			}
		}

		c.Convey("re-selecting the removed endpoint's key returns a different endpoint", func() {
			got, err := p.Select(remaining, target, Invocation{MethodName: "Get", Arguments: []any{"key-0"}})
			c.So(err, c.ShouldBeNil)
			c.So(got, c.ShouldNotEqual, removed)
		})

		c.Convey("every key that previously mapped to a surviving endpoint still maps to it", func() {
			for key, ep := range before {
				if ep == removed {
					continue
				}
				got, err := p.Select(remaining, target, Invocation{MethodName: "Get", Arguments: []any{key}})
				c.So(err, c.ShouldBeNil)
				c.So(got, c.ShouldEqual, ep)
			}
		})
	})
}

func TestConsistentHashMisconfiguredHashNodes(t *testing.T) {
	c.Convey("Given a method configured with hash.nodes not a positive multiple of 4", t, func() {
		candidates := []Endpoint{
			NewStaticEndpoint("A", 0).WithAttr("Get", "hash.nodes", 161),
			NewStaticEndpoint("B", 0),
		}
		target := ServiceTarget{ServiceKey: "svc"}
		p := NewConsistentHashPolicy()

		c.Convey("Select fails with ErrMisconfiguredHashNodes", func() {
			_, err := p.Select(candidates, target, Invocation{MethodName: "Get", Arguments: []any{"k"}})
			c.So(err, c.ShouldEqual, ErrMisconfiguredHashNodes)
		})
	})
}
