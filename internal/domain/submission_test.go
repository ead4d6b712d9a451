package domain

import "testing"

func TestValidateRequiredFieldOrder(t *testing.T) {
	full := func() SubmissionRequest {
		return SubmissionRequest{
			ID:          "myplug",
			CNName:      "我的插件",
			Author:      "author",
			Description: "desc",
			Code:        "print('hi')",
		}
	}

	// The first missing field (in declared order) must be the one reported,
	// even when several are missing.
	tests := []struct {
		name      string
		mutate    func(*SubmissionRequest)
		wantField string
	}{
		{"missing id", func(s *SubmissionRequest) { s.ID = "" }, "id"},
		{"missing cn_name", func(s *SubmissionRequest) { s.CNName = "" }, "cn_name"},
		{"missing author", func(s *SubmissionRequest) { s.Author = "" }, "author"},
		{"missing description", func(s *SubmissionRequest) { s.Description = "" }, "description"},
		{"missing code", func(s *SubmissionRequest) { s.Code = "" }, "code"},
		{"id wins over code", func(s *SubmissionRequest) { s.ID = ""; s.Code = "" }, "id"},
		{"cn_name wins over description", func(s *SubmissionRequest) { s.CNName = ""; s.Description = "" }, "cn_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := full()
			tt.mutate(&req)

			verr := req.Validate()
			if verr == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if verr.Field != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateIDPattern(t *testing.T) {
	valid := []string{"abc", "a", "a1_b2", "z_", "plugin_v2"}
	invalid := []string{"Abc", "1abc", "ab-c", "", "_abc", "abC", "ab c", "中文id"}

	for _, id := range valid {
		req := SubmissionRequest{ID: id, CNName: "n", Author: "a", Description: "d", Code: "c"}
		if verr := req.Validate(); verr != nil {
			t.Errorf("Validate() with id=%q returned %v, want nil", id, verr)
		}
	}

	for _, id := range invalid {
		req := SubmissionRequest{ID: id, CNName: "n", Author: "a", Description: "d", Code: "c"}
		if verr := req.Validate(); verr == nil {
			t.Errorf("Validate() with id=%q returned nil, want error", id)
		}
	}
}

func TestValidateErrorMessageNamesField(t *testing.T) {
	req := SubmissionRequest{CNName: "n", Author: "a", Description: "d", Code: "c"}
	verr := req.Validate()
	if verr == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if verr.Message != "缺少必填字段: id" {
		t.Errorf("Validate() message = %q", verr.Message)
	}
}
