// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"testing"
)

var (
	NULL = Vec3{}
)

func TestBasics(t *testing.T) {
	v := Vec3{1, 2, 3}
	if v.Idx(0) != 1 || v.Idx(1) != 2 || v.Idx(2) != 3 {
		t.Errorf("Vector construction is not obvious")
	}
	if VFromA(v.Array()) != v {
		t.Errorf("VFromA(%v.Array()) != %v", v, v)
	}
}

func TestLength(t *testing.T) {
	if NULL.Length() != 0 {
		t.Errorf("Null vector has not 0 length")
	}
	v := Vec3{2, 2, 1}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{2, 1, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{1, 2, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
}

func TestAdd(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Add(NULL, v)
	if v != got {
		t.Errorf("Adding a null vector changed the vector")
	}
	got = Add(v, v)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("Add(%v,%v) = %v want %v", v, v, got, want)
	}
}

func TestSub(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Sub(v, v)
	if got != NULL {
		t.Errorf("Sub(%v,%v) = %v want %v", v, v, got, NULL)
	}
	v2 := Vec3{9, 7, 5}
	got = Sub(v2, v)
	want := Vec3{8, 5, 2}
	if got != want {
		t.Errorf("Sub(%v,%v) = %v want %v", v2, v, got, want)
	}
}

func TestScale(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := v.Scale(2)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("%v.Scale(2) = %v want %v", v, got, want)
	}
	got = want.Div(2)
	if got != v {
		t.Errorf("%v.Div(2) = %v want %v", want, got, v)
	}
}

func TestNormalize(t *testing.T) {
	v := Vec3{0, 3, 0}
	if got := v.Normalize(); got != UnitY {
		t.Errorf("%v.Normalize() = %v want %v", v, got, UnitY)
	}
	if got := NULL.Normalize(); got != NULL {
		t.Errorf("NULL.Normalize() = %v", got)
	}
}

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	if got := Dot(a, b); got != 12 {
		t.Errorf("Dot(%v,%v) = %v want 12", a, b, got)
	}
	if got := DoublePrecDot(a, b); got != 12 {
		t.Errorf("DoublePrecDot(%v,%v) = %v want 12", a, b, got)
	}
}

func TestCross(t *testing.T) {
	if got := Cross(UnitX, UnitY); got != UnitZ {
		t.Errorf("Cross(x,y) = %v want %v", got, UnitZ)
	}
	if got := Cross(UnitY, UnitX); got != UnitZ.Scale(-1) {
		t.Errorf("Cross(y,x) = %v want -z", got)
	}
}

func TestSwapYZ(t *testing.T) {
	v := Vec3{1, 2, 3}
	want := Vec3{1, 3, 2}
	if got := v.SwapYZ(); got != want {
		t.Errorf("%v.SwapYZ() = %v want %v", v, got, want)
	}
}

func TestEqual(t *testing.T) {
	v1 := Vec3{2, 3, 4}
	v2 := Vec3{4, 3, 2}
	if !Equal(v1, v1) {
		t.Errorf("Vectors are not considered equal to them self")
	}
	if Equal(v1, v2) {
		t.Errorf("Vectors %v and %v are considered equal", v1, v2)
	}
	if !Near(v1, Vec3{2.001, 3, 4}, 0.01) {
		t.Errorf("Near vectors are not considered near")
	}
}

func TestMinMax(t *testing.T) {
	mi, ma := MinMax(Vec3{1, 5, -2}, Vec3{3, 0, -4})
	if mi != (Vec3{1, 0, -4}) || ma != (Vec3{3, 5, -2}) {
		t.Errorf("MinMax = %v %v", mi, ma)
	}
}
