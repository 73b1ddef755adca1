package flb

import (
	"testing"

	c "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

func TestRandomPolicySeedControlledOffsets(t *testing.T) {
	c.Convey("Given candidates A(w=6), B(w=3), C(w=1)", t, func() {
		a := NewStaticEndpoint("A", 0).WithAttr("", "weight", 6)
		b := NewStaticEndpoint("B", 0).WithAttr("", "weight", 3)
		cp := NewStaticEndpoint("C", 0).WithAttr("", "weight", 1)
		candidates := []Endpoint{a, b, cp}
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get"}

		c.Convey("the seed-controlled offset sequence {0,5,6,8,9} yields [A,A,B,B,C]", func() {
			offsets := []int{0, 5, 6, 8, 9}
			next := 0
			p := NewRandomPolicy()
			p.intn = func(n int) int {
				v := offsets[next]
				next++
				return v
			}

			want := []Endpoint{a, a, b, b, cp}
			for i, w := range want {
				got, err := p.Select(candidates, target, inv)
				c.So(err, c.ShouldBeNil)
				c.So(got, c.ShouldEqual, w)
				_ = i
			}
		})
	})
}

func TestRandomPolicyConvergence(t *testing.T) {
	c.Convey("Given candidates A(w=6), B(w=3), C(w=1) drawn many times", t, func() {
		a := NewStaticEndpoint("A", 0).WithAttr("", "weight", 6)
		b := NewStaticEndpoint("B", 0).WithAttr("", "weight", 3)
		cp := NewStaticEndpoint("C", 0).WithAttr("", "weight", 1)
		candidates := []Endpoint{a, b, cp}
		target := ServiceTarget{ServiceKey: "svc"}
		inv := Invocation{MethodName: "Get"}
		p := NewRandomPolicy()

		const n = 20000
		counts := make([]float64, 3)
		for i := 0; i < n; i++ {
			got, err := p.Select(candidates, target, inv)
			c.So(err, c.ShouldBeNil)
			switch got {
			case a:
				counts[0]++
			case b:
				counts[1]++
			case cp:
				counts[2]++
			}
		}

		c.Convey("the empirical frequencies match weight/totalWeight within a chi-square goodness-of-fit bound", func() {
			expected := []float64{n * 6.0 / 10.0, n * 3.0 / 10.0, n * 1.0 / 10.0}
			chi2 := stat.ChiSquare(counts, expected)
			// 2 degrees of freedom (3 categories - 1); a generous bound keeps
			// this test from flaking on an unlucky draw.
			c.So(chi2, c.ShouldBeLessThan, 20.0)
		})
	})
}
