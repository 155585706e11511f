package validation

import "testing"

type applyForm struct {
	Name         string `json:"name" validate:"required,min=2"`
	BarCouncilID string `json:"bar_council_id" validate:"required,barcouncil"`
	TimeSlot     string `json:"time_slot" validate:"omitempty,timeslot"`
}

func Test_Validate_UsesJSONFieldNames(t *testing.T) {
	errs, err := Validate(applyForm{BarCouncilID: "DL/12345/2015"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := errs["name"]; !ok {
		t.Fatalf("want error keyed by json tag, got %v", errs)
	}
}

func Test_BarCouncil_Format(t *testing.T) {
	valid := []string{"DL/12345/2015", "MH/345/2011", "ka/45678/2016"} // lowercased input normalizes
	for _, id := range valid {
		errs, _ := Validate(applyForm{Name: "ok", BarCouncilID: id})
		if errs != nil {
			t.Fatalf("%q rejected: %v", id, errs)
		}
	}
	invalid := []string{"notanid", "D/12345/2015", "DL/12/2015", "DL/12345/15"}
	for _, id := range invalid {
		errs, _ := Validate(applyForm{Name: "ok", BarCouncilID: id})
		if errs == nil {
			t.Fatalf("%q accepted", id)
		}
	}
}

func Test_TimeSlot_Format(t *testing.T) {
	for _, slot := range []string{"00:00", "09:30", "23:59"} {
		errs, _ := Validate(applyForm{Name: "ok", BarCouncilID: "DL/12345/2015", TimeSlot: slot})
		if errs != nil {
			t.Fatalf("%q rejected: %v", slot, errs)
		}
	}
	for _, slot := range []string{"24:00", "9:30", "14:60", "2pm"} {
		errs, _ := Validate(applyForm{Name: "ok", BarCouncilID: "DL/12345/2015", TimeSlot: slot})
		if errs == nil {
			t.Fatalf("%q accepted", slot)
		}
	}
}
