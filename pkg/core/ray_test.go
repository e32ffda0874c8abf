package core

import (
	"math"
	"testing"
)

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, 2))

	if got := ray.At(0); got != NewVec3(1, 2, 3) {
		t.Errorf("At(0) should be the origin, got %v", got)
	}
	// Direction is not unit length and must not be normalized
	if got := ray.At(2); got != NewVec3(1, 2, 7) {
		t.Errorf("At(2): expected (1,2,7), got %v", got)
	}
}

func TestNewRay_Defaults(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1))
	if !math.IsInf(ray.TMax, 1) {
		t.Errorf("Expected unbounded TMax, got %v", ray.TMax)
	}
	if ray.Time != 0 {
		t.Errorf("Expected time 0, got %v", ray.Time)
	}
	if ray.Medium != nil {
		t.Error("Expected nil medium")
	}
}

func TestRayDifferential_ScaleSampleDistance(t *testing.T) {
	rd := NewRayDifferential(NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1)))
	rd.HasDifferentials = true
	rd.XOrigin = NewVec3(1, 0, 0)
	rd.YOrigin = NewVec3(0, 1, 0)
	rd.XDirection = NewVec3(0.1, 0, 1)
	rd.YDirection = NewVec3(0, 0.1, 1)

	rd.ScaleSampleDistance(0.5)

	if rd.XOrigin != NewVec3(0.5, 0, 0) {
		t.Errorf("XOrigin: expected (0.5,0,0), got %v", rd.XOrigin)
	}
	if rd.YOrigin != NewVec3(0, 0.5, 0) {
		t.Errorf("YOrigin: expected (0,0.5,0), got %v", rd.YOrigin)
	}
	if rd.XDirection != NewVec3(0.05, 0, 1) {
		t.Errorf("XDirection: expected (0.05,0,1), got %v", rd.XDirection)
	}
	if rd.YDirection != NewVec3(0, 0.05, 1) {
		t.Errorf("YDirection: expected (0,0.05,1), got %v", rd.YDirection)
	}

	// The primary ray is the fixed point of the rescale
	if rd.Origin != NewVec3(0, 0, 0) || rd.Direction != NewVec3(0, 0, 1) {
		t.Error("Primary ray must not move")
	}
}

func TestRayDifferential_ScaleAboutOffsetPrimary(t *testing.T) {
	primary := NewRay(NewVec3(2, 3, 4), NewVec3(0, 1, 0))
	rd := NewRayDifferential(primary)
	rd.HasDifferentials = true
	rd.XOrigin = NewVec3(3, 3, 4)

	rd.ScaleSampleDistance(2)

	if rd.XOrigin != NewVec3(4, 3, 4) {
		t.Errorf("Auxiliary origin should scale about the primary origin, got %v", rd.XOrigin)
	}
}
