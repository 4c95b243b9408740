package homework

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestValidateRejectsMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
	}{
		{name: "not a mapping", body: `[{"homeworks": []}]`},
		{name: "string", body: `"homeworks"`},
		{name: "no homeworks key", body: `{"current_date": 1}`},
		{name: "homeworks not a list", body: `{"homeworks": {"homework_name": "hw"}}`},
		{name: "homeworks null", body: `{"homeworks": null}`},
		{name: "current_date not a number", body: `{"homeworks": [], "current_date": "yesterday"}`},
		{name: "current_date fractional", body: `{"homeworks": [], "current_date": 1.5}`},
		{name: "current_date 2^63", body: `{"homeworks": [], "current_date": 9223372036854775808}`},
		{name: "current_date beyond int64", body: `{"homeworks": [], "current_date": 1e19}`},
		{name: "current_date below int64", body: `{"homeworks": [], "current_date": -1e19}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(decode(t, tt.body))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("Validate(%s) err = %v, want ErrMalformedResponse", tt.body, err)
			}
		})
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	t.Parallel()
	resp, err := Validate(decode(t, `{"homeworks": [{"homework_name": "hw1", "status": "approved"}], "current_date": 1000}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if resp.Len() != 1 {
		t.Fatalf("homeworks = %+v", resp.Homeworks)
	}
	if rec, err := resp.Record(0); err != nil || rec["homework_name"] != "hw1" {
		t.Fatalf("Record(0) = %v, %v", rec, err)
	}
	ts, ok := resp.CurrentDate()
	if !ok || ts != 1000 {
		t.Fatalf("CurrentDate = %d, %v", ts, ok)
	}

	empty, err := Validate(decode(t, `{"homeworks": []}`))
	if err != nil {
		t.Fatalf("Validate empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("expected no homeworks, got %d", empty.Len())
	}
	if _, ok := empty.CurrentDate(); ok {
		t.Fatal("CurrentDate should be absent")
	}

	// Values built in Go (not through the JSON decoder) are accepted too.
	resp, err = Validate(map[string]any{"homeworks": []any{}, "current_date": float64(1700000000)})
	if err != nil {
		t.Fatalf("Validate float: %v", err)
	}
	if ts, _ := resp.CurrentDate(); ts != 1700000000 {
		t.Fatalf("CurrentDate = %d", ts)
	}
}

func TestValidateChecksEntriesOnRead(t *testing.T) {
	t.Parallel()
	resp, err := Validate(decode(t, `{"homeworks": [{"homework_name": "hw1", "status": "approved"}, "junk"]}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := resp.Record(0); err != nil {
		t.Fatalf("Record(0): %v", err)
	}
	if _, err := resp.Record(1); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Record(1) err = %v, want ErrMalformedResponse", err)
	}
}

func TestValidateLargestTimestamp(t *testing.T) {
	t.Parallel()
	// 2^63 - 1024 is the largest float64 below 2^63.
	resp, err := Validate(map[string]any{"homeworks": []any{}, "current_date": float64(9223372036854774784)})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ts, ok := resp.CurrentDate(); !ok || ts != 9223372036854774784 {
		t.Fatalf("CurrentDate = %d, %v", ts, ok)
	}
}

func TestParseStatusCoversEnumeration(t *testing.T) {
	t.Parallel()
	for status, verdict := range Verdicts {
		msg, err := ParseStatus(Record{"homework_name": "hw1", "status": status})
		if err != nil {
			t.Fatalf("ParseStatus(%s): %v", status, err)
		}
		want := `Изменился статус проверки работы "hw1". ` + verdict
		if msg != want {
			t.Fatalf("ParseStatus(%s) = %q, want %q", status, msg, want)
		}
	}
	if len(Verdicts) != 3 {
		t.Fatalf("expected exactly three statuses, got %d", len(Verdicts))
	}
}

func TestParseStatusApprovedPhrase(t *testing.T) {
	t.Parallel()
	msg, err := ParseStatus(Record{"homework_name": "hw1", "status": "approved"})
	if err != nil {
		t.Fatal(err)
	}
	if msg != `Изменился статус проверки работы "hw1". Работа проверена: ревьюеру всё понравилось. Ура!` {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestParseStatusErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{name: "missing name", rec: Record{"status": "approved"}, want: ErrMissingField},
		{name: "null name", rec: Record{"homework_name": nil, "status": "approved"}, want: ErrMissingField},
		{name: "missing status", rec: Record{"homework_name": "hw2"}, want: ErrUnknownStatus},
		{name: "unknown status", rec: Record{"homework_name": "hw2", "status": "pending"}, want: ErrUnknownStatus},
		{name: "status wrong case", rec: Record{"homework_name": "hw2", "status": "Approved"}, want: ErrUnknownStatus},
		{name: "status not a string", rec: Record{"homework_name": "hw2", "status": json.Number("1")}, want: ErrUnknownStatus},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatus(tt.rec)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseStatus err = %v, want %v", err, tt.want)
			}
		})
	}
}
