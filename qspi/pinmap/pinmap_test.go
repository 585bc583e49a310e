package pinmap

import (
	"testing"

	"quadspi-go/errcode"
)

func testMaps() *Maps {
	return &Maps{
		Data: Map{
			{Pin: 0, Controller: 1}, {Pin: 1, Controller: 1},
			{Pin: 2, Controller: 1}, {Pin: 3, Controller: 1},
			{Pin: 20, Controller: 2}, {Pin: 21, Controller: 2},
			{Pin: 22, Controller: 2}, {Pin: 23, Controller: 2},
		},
		Clock:  Map{{Pin: 4, Controller: 1}, {Pin: 24, Controller: 2}},
		Select: Map{{Pin: 5, Controller: 1}, {Pin: 25, Controller: 2}},
	}
}

func TestMerge(t *testing.T) {
	cases := []struct {
		a, b Controller
		want Controller
		ok   bool
	}{
		{1, 1, 1, true},
		{NoController, 2, 2, true},
		{2, NoController, 2, true},
		{NoController, NoController, NoController, true},
		{1, 2, NoController, false},
	}
	for _, tc := range cases {
		got, ok := Merge(tc.a, tc.b)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Merge(%d,%d) = %d,%v; want %d,%v", tc.a, tc.b, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIdentify(t *testing.T) {
	m := testMaps()
	c, err := Identify(m, 0, 1, 2, 3, 4, 5)
	if err != nil || c != 1 {
		t.Fatalf("Identify = %d, %v", c, err)
	}
}

func TestIdentifyNoConnectSelect(t *testing.T) {
	m := testMaps()
	c, err := Identify(m, 0, 1, 2, 3, 4, NoPin)
	if err != nil || c != 1 {
		t.Fatalf("Identify with NC select = %d, %v", c, err)
	}
}

func TestIdentifyClockOnOtherController(t *testing.T) {
	m := testMaps()
	_, err := Identify(m, 0, 1, 2, 3, 24, 5)
	if errcode.Of(err) != errcode.BusMismatch {
		t.Fatalf("mixed clock accepted: %v", err)
	}
}

func TestIdentifyDataSplitAcrossControllers(t *testing.T) {
	m := testMaps()
	_, err := Identify(m, 0, 1, 22, 23, 4, 5)
	if errcode.Of(err) != errcode.BusMismatch {
		t.Fatalf("split data lines accepted: %v", err)
	}
}

func TestIdentifyUnknownPin(t *testing.T) {
	m := testMaps()
	_, err := Identify(m, 0, 1, 2, 99, 4, 5)
	if errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("unknown pin accepted: %v", err)
	}
}

func TestIdentifyAllUnconnected(t *testing.T) {
	m := testMaps()
	_, err := Identify(m, NoPin, NoPin, NoPin, NoPin, NoPin, NoPin)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("fully unconnected pin set accepted: %v", err)
	}
}
