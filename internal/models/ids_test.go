package models

import (
	"errors"
	"testing"
)

func TestParseIDs_TrimsAndRejectsBlank(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "c-42", want: "c-42"},
		{name: "padded", input: "  17 ", want: "17"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: " \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConsultantID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("ParseConsultantID(%q) error = %v, expected ErrInvalidID", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConsultantID(%q) error = %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("ParseConsultantID(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClientIDs_DropsDuplicates(t *testing.T) {
	ids, err := ParseClientIDs([]string{"x1", " x2", "x1 "})
	if err != nil {
		t.Fatalf("ParseClientIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "x1" || ids[1] != "x2" {
		t.Errorf("ParseClientIDs() = %v, expected [x1 x2]", ids)
	}

	if _, err := ParseClientIDs([]string{"x1", ""}); err == nil {
		t.Error("ParseClientIDs should fail on a blank entry")
	}
}

func TestEnumValidators(t *testing.T) {
	if !ValidClientStatus("tour_scheduled") || ValidClientStatus("won") {
		t.Error("ValidClientStatus mismatch")
	}
	if !ValidClassification("investor") || ValidClassification("landlord") {
		t.Error("ValidClassification mismatch")
	}
	if !ValidConsultantStatus("on_leave") || ValidConsultantStatus("retired") {
		t.Error("ValidConsultantStatus mismatch")
	}
	if !ValidProjectStatus("on_hold") || ValidProjectStatus("archived") {
		t.Error("ValidProjectStatus mismatch")
	}
}
