package config

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{R: 255, A: 255}, false},
		{"#00ff00", color.NRGBA{G: 255, A: 255}, false},
		{"16181C", color.NRGBA{R: 0x16, G: 0x18, B: 0x1C, A: 255}, false},
		{" #FFB432 ", color.NRGBA{R: 255, G: 180, B: 50, A: 255}, false},
		{"#FFB43280", color.NRGBA{R: 255, G: 180, B: 50, A: 0x80}, false},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
		{"#1234567", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatHexColor(t *testing.T) {
	tests := []struct {
		in   color.NRGBA
		want string
	}{
		{color.NRGBA{R: 0x26, G: 0x28, B: 0x2C, A: 255}, "#26282C"},
		{color.NRGBA{R: 255, G: 180, B: 50, A: 0x80}, "#FFB43280"},
	}
	for _, tt := range tests {
		got := FormatHexColor(tt.in)
		if got != tt.want {
			t.Errorf("FormatHexColor(%v) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := ParseHexColor(got)
		if err != nil || back != tt.in {
			t.Errorf("ParseHexColor(%q) = %v, %v; want %v", got, back, err, tt.in)
		}
	}
}
