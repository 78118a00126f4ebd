package model

import "testing"

func TestJobDateLabels(t *testing.T) {
	tests := []struct {
		date       []string
		start, end string
	}{
		{[]string{"2019", "2023"}, "2019", "2023"},
		{[]string{"2024"}, "2024", ""},
		{nil, "", ""},
	}

	for _, tt := range tests {
		j := Job{Date: tt.date}
		if j.Start() != tt.start || j.End() != tt.end {
			t.Errorf("Job{Date: %v} = (%q, %q), want (%q, %q)", tt.date, j.Start(), j.End(), tt.start, tt.end)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{ Validate() error }
		wantErr bool
	}{
		{"summary", Summary{Summary: "text"}, false},
		{"blank summary", Summary{Summary: "  "}, true},
		{"description", JobDescription{Job: 1, Description: "did things"}, false},
		{"empty description", JobDescription{Job: 1}, true},
		{"item", Cvitem{Job: 2, Item: "shipped"}, false},
		{"empty item", Cvitem{Job: 2}, true},
		{"story", CarStory{Job: 1, Result: "faster"}, false},
		{"empty story", CarStory{Job: 1, Skills: []string{"go"}}, true},
		{"letter", Letterinfo{Content: "Dear"}, false},
		{"letter without content", Letterinfo{Subject: "Application"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHeaders(t *testing.T) {
	h := &Headers{Fields: []HeaderField{
		{Key: "name", Values: []string{"Jane", "Doe"}},
		{Key: "email", Values: []string{"jane@example.com"}},
	}}

	if h.Name() != "Jane Doe" {
		t.Errorf("Name() = %q", h.Name())
	}
	if h.Email() != "jane@example.com" {
		t.Errorf("Email() = %q", h.Email())
	}
	if h.Mobile() != "" {
		t.Errorf("Mobile() = %q, want empty", h.Mobile())
	}

	var nilHeaders *Headers
	if nilHeaders.Name() != "" {
		t.Error("nil headers should have empty name")
	}
}
