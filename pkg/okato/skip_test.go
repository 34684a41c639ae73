package okato

import (
	"errors"
	"testing"
)

func TestSkip(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Сельские населенные пункты Тверской области", true},
		{"Объекты административно-территориального деления", true},
		{"Города районного значения", true},
		{"Города областного значения", true},
		{"Города краевого значения", true},
		{"Населенные пункты, находящиеся в подчинении", true},
		{"Города, находящиеся в границах района", true},
		{"Поселки городского типа", true},
		{"Административные округа Москвы", true},
		{"Районы Республики Адыгея", true},
		{"Сельсоветы Кировского района", true},
		{"п Тестовое", false},
		{"г Тула", false},
		// Case-sensitive: lowercase phrases are real places.
		{"районы", false},
		{"", false},
	}
	for _, tt := range tests {
		r := Record{Title: tt.title}
		if got := Skip(r); got != tt.want {
			t.Errorf("Skip(%q) = %v, want %v", tt.title, got, tt.want)
		}
		// Same input, same answer.
		if got := Skip(r); got != tt.want {
			t.Errorf("Skip(%q) second call = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord([]string{"11", "22", "333", "000", "1", "п Тестовое", "extra"}, 7)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if r.Ordinal != 7 || r.Region != "11" || r.Area != "22" || r.Place != "333" ||
		r.District != "000" || r.Title != "п Тестовое" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestParseRecord_TooShort(t *testing.T) {
	_, err := ParseRecord([]string{"11", "22", "333", "000", "1"}, 3)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	var re *RecordError
	if !errors.As(err, &re) || re.Ordinal != 3 {
		t.Fatalf("expected RecordError for record 3, got %v", err)
	}
}
