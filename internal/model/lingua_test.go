package model

import "testing"

func TestLinguaDetectEnglish(t *testing.T) {
	d := NewLinguaDetector()
	got := d.Detect("These terms of service govern your use of the product and the handling of your personal data.")
	if len(got) == 0 {
		t.Fatal("no detections")
	}
	if got[0].Code != "en" {
		t.Errorf("top detection = %+v, want en", got[0])
	}
	if got[0].Confidence <= 0 {
		t.Errorf("confidence = %v", got[0].Confidence)
	}
}

func TestLinguaDetectEmptyInput(t *testing.T) {
	d := NewLinguaDetector()
	if got := d.Detect("   "); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}
