package core

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{"overlapping", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"apart horizontally", NewRect(0, 0, 10, 10), NewRect(15, 0, 10, 10), false},
		{"adjacent (no overlap)", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"contained", NewRect(0, 0, 20, 20), NewRect(5, 5, 5, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
		{"outside bottom", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
		{3, 0, -4, 0}, // empty range
	}

	for _, tc := range tests {
		if got := ClampF(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("ClampF(%v, %v, %v) = %v, expected %v", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
}

func TestCameraFollow(t *testing.T) {
	// 40x12 cells of 4x8 px show a 160x96 px window.
	tests := []struct {
		name   string
		wx, wy float64
		mapW   float64
		mapH   float64
		wantX  float64
		wantY  float64
	}{
		{"centred", 400, 300, 800, 600, 320, 252},
		{"clamped top-left", 10, 10, 800, 600, 0, 0},
		{"clamped bottom-right", 790, 590, 800, 600, 640, 504},
		{"map smaller than view", 50, 40, 100, 80, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCamera(4, 8, 40, 12)
			c.Follow(tc.wx, tc.wy, tc.mapW, tc.mapH)
			if c.X != tc.wantX || c.Y != tc.wantY {
				t.Errorf("camera at (%v, %v), expected (%v, %v)", c.X, c.Y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestCameraToScreen(t *testing.T) {
	c := NewCamera(4, 8, 40, 12)
	c.X, c.Y = 100, 50

	sx, sy := c.ToScreen(108, 74)
	if sx != 2 || sy != 3 {
		t.Errorf("ToScreen = (%d, %d), expected (2, 3)", sx, sy)
	}
	if c.Visible(99, 74) {
		t.Error("position left of the view should not be visible")
	}
	wx, wy := c.ToWorld(2, 3)
	if wx != 110 || wy != 78 {
		t.Errorf("ToWorld = (%v, %v), expected (110, 78)", wx, wy)
	}
}

func TestInputAxis(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionRight)
	f.Set(ActionUp)
	if x, y := f.Axis(); x != 1 || y != -1 {
		t.Errorf("Axis() = (%v, %v), expected (1, -1)", x, y)
	}

	f.Set(ActionLeft)
	if x, _ := f.Axis(); x != 0 {
		t.Errorf("opposite keys should cancel, got x=%v", x)
	}
	if !ActionDown.IsMovement() || ActionPause.IsMovement() {
		t.Error("IsMovement misclassified an action")
	}
}
