package cnholiday

import (
	"errors"
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		year    int
		rname   string
		start   Date
		days    int
		makeup  []Date
		wantErr bool
	}{
		{"valid", 2023, "劳动节", day(2023, time.April, 29), 5, []Date{day(2023, time.April, 23)}, false},
		{"absent makeup", 2022, "元旦", day(2022, time.December, 31), 1, nil, false},
		{"blank name", 2023, "  ", day(2023, time.April, 5), 1, nil, true},
		{"zero days", 2023, "清明节", day(2023, time.April, 5), 0, nil, true},
		{"start in other year", 2023, "元旦", day(2022, time.December, 31), 1, nil, true},
		{"span leaves year", 2022, "元旦", day(2022, time.December, 31), 2, nil, true},
		{"invalid start", 2023, "春节", Date{Year: 2023, Month: time.February, Day: 30}, 1, nil, true},
		{"makeup covered", 2023, "劳动节", day(2023, time.April, 29), 5, []Date{day(2023, time.May, 1)}, true},
		{"invalid makeup", 2023, "劳动节", day(2023, time.April, 29), 5, []Date{{Year: 2023, Month: 13, Day: 1}}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRecord(tt.year, tt.rname, tt.start, tt.days, tt.makeup)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("error %v should wrap ErrInvalidRecord", err)
			}
		})
	}
}

func TestNewRecord_KeepsAbsentAndEmptyApart(t *testing.T) {
	t.Parallel()

	absent, err := NewRecord(2023, "元旦", day(2023, time.January, 1), 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := NewRecord(2023, "元旦", day(2023, time.January, 1), 2, []Date{})
	if err != nil {
		t.Fatal(err)
	}
	if absent.HasMakeupDays() {
		t.Error("nil makeup list should stay absent")
	}
	if !empty.HasMakeupDays() {
		t.Error("empty makeup list should stay present")
	}
	if absent.Equal(empty) {
		t.Error("absent and empty makeup lists should not compare equal")
	}
}

func TestNewRecord_TrimsName(t *testing.T) {
	t.Parallel()

	r, err := NewRecord(2023, " 端午节 ", day(2023, time.June, 22), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "端午节" {
		t.Errorf("Name = %q, want 端午节", r.Name)
	}
}

func TestRecordDates(t *testing.T) {
	t.Parallel()

	r := Record{Year: 2023, Name: "中秋节、国庆节", StartDate: day(2023, time.September, 29), Days: 8}
	dates := r.Dates()
	if len(dates) != 8 {
		t.Fatalf("len(Dates()) = %d, want 8", len(dates))
	}
	if dates[0] != day(2023, time.September, 29) || dates[7] != day(2023, time.October, 6) {
		t.Errorf("Dates() = %v", dates)
	}
	if r.EndDate() != day(2023, time.October, 6) {
		t.Errorf("EndDate() = %v", r.EndDate())
	}
	if !r.Covers(day(2023, time.October, 1)) || r.Covers(day(2023, time.October, 7)) {
		t.Error("Covers() disagrees with the span")
	}
}

func TestRecordString(t *testing.T) {
	t.Parallel()

	r := Record{Year: 2023, Name: "端午节", StartDate: day(2023, time.June, 22), Days: 3, MakeupDays: []Date{day(2023, time.June, 25)}}
	if got, want := r.String(), "2023 端午节 2023-06-22 +3 makeup[2023-06-25]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	r.MakeupDays = nil
	if got, want := r.String(), "2023 端午节 2023-06-22 +3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
