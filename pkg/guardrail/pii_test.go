package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIIDetector_Detect(t *testing.T) {
	d := NewPIIDetector()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"vn mobile", "Gọi tôi số 0912345678", []string{PIIPhoneNumber}},
		{"vn grouped", "sđt: 0912 345 678 nhé", []string{PIIPhoneNumber}},
		{"vn dotted landline", "Hotline 024.3825.1234", []string{PIIPhoneNumber}},
		{"international vn", "liên hệ +84 912 345 678", []string{PIIPhoneNumber}},
		{"international compact", "call +14155552671", []string{PIIPhoneNumber}},
		{"email", "mail mình: an.nguyen@example.com.vn", []string{PIIEmail}},
		{"phone and email", "0987654321 hoặc test@mail.com", []string{PIIPhoneNumber, PIIEmail}},
		{"price", "50000 VND", []string{}},
		{"count", "5 địa điểm", []string{}},
		{"large price", "giá 1.500.000 đồng", []string{}},
		{"year", "năm 2024", []string{}},
		{"short zero number", "phòng 0123", []string{}},
		{"at sign without domain", "gặp @ quán cà phê", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.input)
			assert.Equal(t, tt.want, got.Types)
			assert.Equal(t, len(tt.want) > 0, got.HasPII)
		})
	}
}
